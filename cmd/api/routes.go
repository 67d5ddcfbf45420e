package main

import (
	"gramsetu-backend/internal/auth"
	"gramsetu-backend/internal/httpapi"
	"gramsetu-backend/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/v1")

	// AUTH routes (token issuance).
	// NOTE: This is a placeholder login route; real credential validation is not implemented.
	v1.POST("/auth/login", h.Login)

	// Intake is public: complaints arrive from citizens with no account,
	// and the SMS/USSD endpoints are gateway callbacks.
	// NOTE: gateway endpoints should be protected by provider signature
	// validation in production.
	v1.POST("/complaints", h.SubmitComplaint)
	v1.POST("/sms/complaint", h.SubmitSMS)
	v1.POST("/ussd/complaint", h.SubmitUSSD)

	// protected API group
	protected := v1.Group("")
	protected.Use(authMW)
	{
		// Identity echo for clients.
		protected.GET("/me", func(c *gin.Context) {
			uid, _ := auth.UserID(c.Request.Context())
			district, _ := auth.District(c.Request.Context())
			role, _ := auth.Role(c.Request.Context())
			c.JSON(200, gin.H{"user_id": uid, "district": district, "role": role})
		})

		// COMPLAINT review routes
		review := protected.Group("/complaints")
		review.Use(httpapi.RequireDistrictAndAnyRole(rbac.RoleOfficer, rbac.RoleFieldWorker, rbac.RoleSuperAdmin)...)
		{
			review.GET("", h.ListComplaints)
			review.GET("/:id", h.GetComplaint)
			review.PUT("/:id", h.ResolveComplaint)
			review.POST("/:id/complete", h.CompleteAssignment)
		}

		// Assignment is an officer decision; field workers only execute.
		protected.POST("/complaints/:id/assign",
			append(httpapi.RequireDistrictAndAnyRole(rbac.RoleOfficer, rbac.RoleSuperAdmin), h.AssignComplaint)...)

		// CITIZEN routes
		citizens := protected.Group("/citizens")
		citizens.Use(httpapi.RequireDistrictAndAnyRole(rbac.RoleOfficer, rbac.RoleSuperAdmin)...)
		{
			citizens.GET("/:id", h.GetCitizen)
		}

		// FIELD WORKER routes
		workers := protected.Group("/workers")
		workers.Use(httpapi.RequireDistrictAndAnyRole(rbac.RoleOfficer, rbac.RoleFieldWorker, rbac.RoleSuperAdmin)...)
		{
			workers.GET("", h.ListWorkers)
			workers.GET("/:id/assignments", h.WorkerAssignments)
		}

		// DASHBOARD routes
		dashboard := protected.Group("/dashboard")
		dashboard.Use(httpapi.RequireDistrictAndAnyRole(rbac.RoleOfficer, rbac.RoleSuperAdmin)...)
		{
			dashboard.GET("", h.Dashboard)
			dashboard.GET("/workers", h.WorkerPerformance)
		}

		// FRAUD pre-screening
		protected.POST("/fraud/check",
			append(httpapi.RequireDistrictAndAnyRole(rbac.RoleOfficer, rbac.RoleSuperAdmin), h.CheckFraud)...)

		// AUDIT routes
		// Hidden auditor role is intentionally allowed here and nowhere else.
		auditGroup := protected.Group("/audit")
		auditGroup.Use(httpapi.RequireDistrictAndAnyRole(rbac.RoleOfficer, rbac.RoleAuditor, rbac.RoleSuperAdmin)...)
		{
			auditGroup.POST("/log", h.LogAuditEvent)
			auditGroup.GET("/verify", h.VerifyAuditChain)
			auditGroup.GET("/trail", h.AuditTrail)
		}
	}
}
