package exam

import (
	"testing"

	examModels "examly/models/exam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idSet(ids []uint) map[uint]bool {
	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func TestDrawPartitionsPoolAcrossAttempts(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)

	var pool []uint
	for i := 0; i < 5; i++ {
		q := addQuestion(t, db, &fx.Exam, examModels.TypeSingle, []string{"a", "b"}, []int{0})
		pool = append(pool, q.ID)
	}

	first, err := Draw(db, &fx.Exam, fx.Student.ID, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)

	// Only the two unasked questions remain in this cycle.
	second, err := Draw(db, &fx.Exam, fx.Student.ID, 3)
	require.NoError(t, err)
	require.Len(t, second, 2)

	seen := idSet(first)
	for _, id := range second {
		assert.False(t, seen[id], "question repeated before full coverage")
		seen[id] = true
	}
	assert.Len(t, seen, 5)

	// Pool exhausted: the cycle resets and a full draw is possible again.
	third, err := Draw(db, &fx.Exam, fx.Student.ID, 3)
	require.NoError(t, err)
	require.Len(t, third, 3)
	poolSet := idSet(pool)
	for _, id := range third {
		assert.True(t, poolSet[id])
	}
}

func TestDrawWithoutLimitReturnsWholePool(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)

	for i := 0; i < 4; i++ {
		addQuestion(t, db, &fx.Exam, examModels.TypeSingle, []string{"a", "b"}, []int{0})
	}

	selected, err := Draw(db, &fx.Exam, fx.Student.ID, 0)
	require.NoError(t, err)
	assert.Len(t, selected, 4)
}

func TestDrawEmptyPool(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)

	_, err := Draw(db, &fx.Exam, fx.Student.ID, 3)
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestDrawTracksStudentsIndependently(t *testing.T) {
	db := setupTestDB(t)
	fx := newFixture(t, db)

	for i := 0; i < 3; i++ {
		addQuestion(t, db, &fx.Exam, examModels.TypeSingle, []string{"a", "b"}, []int{0})
	}

	first, err := Draw(db, &fx.Exam, fx.Student.ID, 0)
	require.NoError(t, err)
	assert.Len(t, first, 3)

	// A fresh student starts a fresh cycle over the full pool.
	other, err := Draw(db, &fx.Exam, fx.Student.ID+100, 0)
	require.NoError(t, err)
	assert.Len(t, other, 3)
}

func TestAskedSetSurvivesCorruptJSON(t *testing.T) {
	progress := examModels.ExamProgress{AskedQuestions: []byte("not json")}
	assert.Empty(t, progress.AskedSet())
}
