package httpserver

import (
	"context"
	"time"

	"opsboard/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Readiness is implemented by the MQ publisher and consumer so /readyz can
// check them without holding the concrete types.
type Readiness interface {
	IsConnected() bool
}

// Handlers bundles everything the router mounts.
type Handlers struct {
	Project      *handler.ProjectHandler
	Task         *handler.TaskHandler
	Brief        *handler.BriefHandler
	DoD          *handler.DoDHandler
	Decision     *handler.DecisionHandler
	Review       *handler.ReviewHandler
	Sample       *handler.SampleHandler
	Dashboard    *handler.DashboardHandler
	Export       *handler.ExportHandler
	Search       *handler.SearchHandler
	Notification *handler.NotificationHandler
	Template     *handler.TemplateHandler
	Collab       *handler.CollabHandler
}

func NewRouter(h Handlers, jwtSecret string, logger *zap.Logger, db *pgxpool.Pool, mq Readiness) *gin.Engine {
	r := gin.Default()

	r.Use(requestLogger(logger))
	r.Use(requestMetrics())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if mq != nil && !mq.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/projects", h.Project.Create)
	r.GET("/projects", h.Project.List)
	r.GET("/projects/:id", h.Project.Get)
	r.PATCH("/projects/:id", h.Project.Update)
	r.DELETE("/projects/:id", h.Project.Delete)

	r.POST("/tasks", h.Task.Create)
	r.GET("/tasks", h.Task.List)
	r.GET("/tasks/:id", h.Task.Get)
	r.PATCH("/tasks/:id/state", h.Task.ChangeState)
	r.PATCH("/tasks/:id", h.Task.Update)
	r.DELETE("/tasks/:id", h.Task.Delete)

	r.POST("/briefs", h.Brief.Create)
	r.GET("/briefs", h.Brief.List)
	r.GET("/briefs/task/:task_id", h.Brief.GetByTask)
	r.PATCH("/briefs/:brief_id", h.Brief.Update)
	r.DELETE("/briefs/:brief_id", h.Brief.Delete)

	r.POST("/dod", h.DoD.Create)
	r.GET("/dod", h.DoD.List)
	r.GET("/dod/task/:task_id", h.DoD.GetByTask)
	r.PATCH("/dod/:dod_id", h.DoD.Update)
	r.DELETE("/dod/:dod_id", h.DoD.Delete)

	r.POST("/decisions", h.Decision.Create)
	r.GET("/decisions", h.Decision.List)
	r.GET("/decisions/task/:task_id", h.Decision.ListByTask)
	r.PATCH("/decisions/:decision_id/dplus7", h.Decision.UpdateDPlus7)
	r.DELETE("/decisions/:decision_id", h.Decision.Delete)

	r.POST("/reviews", h.Review.Create)
	r.GET("/reviews", h.Review.List)
	r.GET("/reviews/task/:task_id", h.Review.ListByTask)
	r.PATCH("/reviews/:review_id", h.Review.Update)
	r.DELETE("/reviews/:review_id", h.Review.Delete)

	r.POST("/samples", h.Sample.Create)
	r.GET("/samples", h.Sample.List)
	r.GET("/samples/task/:task_id", h.Sample.ListByTask)
	r.PATCH("/samples/:sample_id", h.Sample.Update)
	r.DELETE("/samples/:sample_id", h.Sample.Delete)

	r.GET("/dashboard/kpi", h.Dashboard.KPI)
	r.GET("/dashboard/productivity", h.Dashboard.Productivity)

	r.GET("/exports/project/:project_id/md", h.Export.ProjectMarkdown)

	r.GET("/search/", h.Search.Unified)
	r.GET("/search/similar-projects/:project_id", h.Search.SimilarProjects)
	r.GET("/search/decision-patterns", h.Search.DecisionPatterns)
	r.GET("/search/suggestions/:project_id", h.Search.Suggestions)
	r.GET("/search/stats", h.Search.Stats)

	r.GET("/notifications/", h.Notification.List)
	r.GET("/notifications/pending", h.Notification.Pending)
	r.POST("/notifications/generate", h.Notification.Generate)
	r.PATCH("/notifications/:notification_id/mark-read", h.Notification.MarkRead)
	r.PATCH("/notifications/:notification_id/dismiss", h.Notification.Dismiss)
	r.GET("/notifications/settings", h.Notification.GetSettings)
	r.PATCH("/notifications/settings", h.Notification.UpdateSettings)
	r.GET("/notifications/stats", h.Notification.Stats)

	r.POST("/templates/init-system-templates", h.Template.InitSystemTemplates)
	r.GET("/templates/", h.Template.List)
	r.GET("/templates/recommend", h.Template.Recommend)
	r.GET("/templates/:template_id", h.Template.Get)
	r.POST("/templates/generate-from-project/:project_id", h.Template.GenerateFromProject)
	r.POST("/templates/:template_id/use", h.Template.RecordUsage)
	r.GET("/templates/categories/stats", h.Template.Categories)
	r.GET("/templates/best-practices/", h.Template.BestPractices)
	r.GET("/templates/stats/overview", h.Template.Stats)

	// Account creation and login stay public; everything else on the
	// collaboration surface needs a token.
	r.POST("/collaboration/users", h.Collab.Register)
	r.POST("/collaboration/users/login", h.Collab.Login)

	collab := r.Group("/collaboration")
	collab.Use(AuthMiddleware(jwtSecret))
	{
		collab.GET("/users/:user_id/projects", h.Collab.UserProjects)
		collab.GET("/users/:user_id/workload", h.Collab.UserWorkload)
		collab.POST("/projects/:project_id/share", h.Collab.ShareProject)
		collab.GET("/invites", h.Collab.PendingInvites)
		collab.POST("/invites/:invite_token/accept", h.Collab.AcceptInvite)
		collab.POST("/invites/:invite_token/reject", h.Collab.RejectInvite)
		collab.GET("/projects/:project_id/members", h.Collab.Members)
		collab.PATCH("/tasks/:task_id/assign", h.Collab.AssignTask)
		collab.POST("/projects/:project_id/approvals", h.Collab.CreateWorkflow)
		collab.POST("/approvals/:workflow_id/respond", h.Collab.RespondToWorkflow)
		collab.GET("/approvals/:workflow_id", h.Collab.GetWorkflow)
		collab.POST("/projects/:project_id/decisions", h.Collab.CreateTeamDecision)
		collab.POST("/decisions/:decision_id/vote", h.Collab.CastVote)
		collab.PATCH("/decisions/:decision_id/conclude", h.Collab.ConcludeDecision)
		collab.POST("/decisions/:decision_id/comments", h.Collab.AddComment)
		collab.GET("/decisions/:decision_id", h.Collab.GetTeamDecision)
		collab.GET("/decisions/:decision_id/stats", h.Collab.DecisionStats)
	}

	return r
}
