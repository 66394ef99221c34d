package models

import "gorm.io/gorm"

// AccessLog records one row per handled request.
type AccessLog struct {
	gorm.Model
	IP        string `json:"ip" gorm:"size:64"`
	Path      string `json:"path" gorm:"size:400"`
	Method    string `json:"method" gorm:"size:10"`
	UserAgent string `json:"user_agent" gorm:"size:400"`
	UserID    *uint  `json:"user_id" gorm:"index"`
	TenantID  *uint  `json:"tenant_id" gorm:"index"`
}
