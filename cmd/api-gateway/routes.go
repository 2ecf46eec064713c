package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/learner-hub-api/internal/handler"
	"github.com/noah-isme/learner-hub-api/internal/middleware"
	"github.com/noah-isme/learner-hub-api/internal/models"
)

// routeDeps bundles everything registerRoutes needs. Any nil handler leaves its routes unregistered.
type routeDeps struct {
	Tokens  middleware.TokenValidator
	Audit   middleware.AuditWriter
	Logger  *zap.Logger
	Metrics *handler.MetricsHandler

	SamplePlans      *handler.SamplePlanHandler
	SampleDetails    *handler.SampleDetailHandler
	Questions        *handler.IQAQuestionHandler
	SessionTypes     *handler.SessionTypeHandler
	Acknowledgements *handler.AcknowledgementHandler
	Exports          *handler.ExportHandler
}

func registerRoutes(r gin.IRouter, prefix string, deps routeDeps) {
	if deps.Metrics != nil {
		r.GET("/health", deps.Metrics.Health)
		r.GET("/ready", deps.Metrics.Ready)
		r.GET("/metrics", deps.Metrics.Prometheus)
		r.GET("/metrics/summary", deps.Metrics.Summary)
	}

	api := r.Group(prefix)

	// Signed-token downloads carry their own authorisation.
	if deps.SampleDetails != nil {
		api.GET("/sample-plan/documents/download/:token", deps.SampleDetails.DownloadDocument)
	}
	if deps.Acknowledgements != nil {
		api.GET("/acknowledgement/files/:token", deps.Acknowledgements.File)
	}

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Tokens))

	if deps.SamplePlans != nil || deps.SampleDetails != nil {
		plans := secured.Group("/sample-plan")
		plans.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleIQA))
		plans.Use(middleware.Audit(deps.Audit, "sample-plan", deps.Logger))
		if h := deps.SamplePlans; h != nil {
			plans.GET("/list", h.List)
			plans.POST("", middleware.RequireRoles(models.RoleAdmin), h.Create)
			plans.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.Delete)
			plans.GET("/:id/learners", h.Learners)
			plans.POST("/add-sampled-learners", h.ApplySampledLearners)
			plans.PATCH("/deatil/:id", h.UpdateDetail)
			plans.PATCH("/detail/:id", h.UpdateDetail)
			plans.DELETE("/remove-sampled-learner/:id", h.RemoveSampledLearner)
		}
		if h := deps.SampleDetails; h != nil {
			for _, segment := range []string{"/deatil/:id", "/detail/:id"} {
				plans.GET(segment+"/actions", h.ListActions)
				plans.POST(segment+"/actions", h.CreateAction)
				plans.GET(segment+"/questions", h.ListQuestions)
				plans.POST(segment+"/questions", h.CreateQuestion)
				plans.GET(segment+"/forms", h.ListForms)
				plans.POST(segment+"/forms", h.AllocateForm)
				plans.GET(segment+"/documents", h.ListDocuments)
				plans.POST(segment+"/documents", h.UploadDocument)
			}
			plans.PUT("/actions/:id", h.UpdateAction)
			plans.DELETE("/actions/:id", h.DeleteAction)
			plans.PUT("/questions/:id", h.UpdateQuestion)
			plans.DELETE("/questions/:id", h.DeleteQuestion)
			plans.PUT("/forms/:id", h.UpdateForm)
			plans.DELETE("/forms/:id", h.DeleteForm)
			plans.PUT("/documents/:id", h.UpdateDocument)
			plans.DELETE("/documents/:id", h.DeleteDocument)
		}
	}

	if h := deps.Questions; h != nil {
		questions := secured.Group("/iqa-questions")
		questions.GET("/questions", middleware.RequireRoles(models.RoleAdmin, models.RoleIQA), h.ActiveList)
		admin := questions.Group("/admin")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		admin.Use(middleware.Audit(deps.Audit, "iqa-question", deps.Logger))
		admin.GET("/questions", h.AdminList)
		admin.POST("/questions", h.Create)
		admin.POST("/questions/bulk", h.BulkCreate)
		admin.PATCH("/questions/:id", h.Update)
		admin.DELETE("/questions/:id", h.Delete)
	}

	if h := deps.SessionTypes; h != nil {
		sessionTypes := secured.Group("/sessionType")
		sessionTypes.GET("/list", h.List)
		admin := sessionTypes.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		admin.Use(middleware.Audit(deps.Audit, "session-type", deps.Logger))
		admin.POST("/create", h.Create)
		admin.PUT("/update/:id", h.Update)
		admin.PATCH("/reorder", h.Reorder)
		admin.DELETE("/delete/:id", h.Delete)
	}

	if h := deps.Acknowledgements; h != nil {
		acks := secured.Group("/acknowledgement")
		acks.Use(middleware.RequireAuthenticated())
		acks.Use(middleware.Audit(deps.Audit, "acknowledgement", deps.Logger))
		acks.GET("/list", h.List)
		acks.POST("/create", h.Create)
		acks.PUT("/update/:id", h.Update)
		acks.DELETE("/delete/:id", h.Delete)
		acks.DELETE("/clear", middleware.RequireRoles(models.RoleAdmin), h.Clear)
	}

	if h := deps.Exports; h != nil {
		exports := secured.Group("/exports")
		exports.Use(middleware.RequireAuthenticated())
		exports.GET("/timelogs", h.Timelogs)
		exports.GET("/feedback", middleware.RequireRoles(models.RoleAdmin, models.RoleIQA, models.RoleAssessor), h.Feedback)
		exports.GET("/form-submissions/:id/pdf", h.FormSubmissionPDF)
		exports.POST("/form-submissions/:id/snapshot", h.UploadSnapshot)
	}
}
