package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth       *AuthHandler
	Students   *StudentHandler
	Attendance *AttendanceHandler
	Backup     *BackupHandler
	Sync       *SyncHandler
	Settings   *SettingsHandler
	Reports    *ReportHandler
}

// Register mounts the API routes. Everything except the auth endpoints sits
// behind gate.
func Register(api *gin.RouterGroup, h Handlers, gate gin.HandlerFunc) {
	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/status", h.Auth.Status)

	protected := api.Group("")
	if gate != nil {
		protected.Use(gate)
	}

	students := protected.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/summary", h.Students.Summary)
	students.GET("/classes", h.Students.Classes)
	students.GET("/months", h.Students.Months)
	students.POST("/duplicates", h.Students.Duplicates)
	students.GET("/:id", h.Students.Get)
	students.PATCH("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)
	students.POST("/:id/select", h.Students.Select)
	students.POST("/:id/payment", h.Students.MarkPaid)
	students.DELETE("/:id/payment", h.Students.RevertPayment)
	students.POST("/:id/sent", h.Students.ToggleSent)
	students.PUT("/:id/note", h.Students.SetNote)
	students.POST("/:id/attendance", h.Attendance.CheckIn)
	students.PUT("/:id/attendance", h.Attendance.Set)
	students.DELETE("/:id/attendance/:date", h.Attendance.Remove)
	students.GET("/:id/receipt", h.Reports.Receipt)
	students.GET("/:id/reminder", h.Reports.Reminder)

	protected.GET("/payments", h.Students.Payments)

	attendance := protected.Group("/attendance")
	attendance.GET("/bulk-candidates", h.Attendance.BulkCandidates)
	attendance.POST("/bulk", h.Attendance.Bulk)

	backup := protected.Group("/backup")
	backup.GET("", h.Backup.Download)
	backup.POST("/restore", h.Backup.Restore)

	sync := protected.Group("/sync")
	sync.GET("/config", h.Sync.GetConfig)
	sync.PUT("/config", h.Sync.SaveConfig)
	sync.POST("/push", h.Sync.Push)
	sync.POST("/pull", h.Sync.Pull)
	sync.POST("/diagnose", h.Sync.Diagnose)
	sync.GET("/status", h.Sync.Status)

	settings := protected.Group("/settings")
	settings.GET("/bank", h.Settings.GetBank)
	settings.PUT("/bank", h.Settings.SaveBank)
	settings.GET("/banks", h.Settings.Banks)
	settings.GET("/profiles", h.Settings.Profiles)
	settings.POST("/profiles", h.Settings.CreateProfile)
	settings.PUT("/profiles/:id", h.Settings.UpdateProfile)
	settings.DELETE("/profiles/:id", h.Settings.DeleteProfile)
	settings.POST("/profiles/:id/switch", h.Settings.SwitchProfile)

	protected.POST("/import", h.Reports.Import)
	protected.GET("/import/template", h.Reports.Template)
	protected.GET("/export", h.Reports.Export)
}
