package router

import (
	"encoding/json"
	"net/http"
	"time"

	"resumekit/internal/account"
	"resumekit/internal/auth"
	docHandler "resumekit/internal/document"
	"resumekit/internal/document/service"
	"resumekit/internal/feedback"
	"resumekit/internal/interview"
	"resumekit/middleware"
	"resumekit/socket"

	"github.com/go-chi/chi/v5"
)

const banner = "Resume Builder Server API is running"

type Dependencies struct {
	Prefix       string
	CORSOrigins  []string
	MaxBodyBytes int64

	Verifier  auth.Verifier
	Accounts  account.Creator
	Documents *service.DocumentService
	Feedback  *feedback.Repository
	Hub       *socket.Hub
}

func Setup(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORSMiddleware(deps.CORSOrigins))
	if deps.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBodySize(deps.MaxBodyBytes))
	}

	docs := docHandler.NewDocumentHandler(deps.Documents)
	accounts := account.NewHandler(deps.Accounts)
	questions := interview.NewHandler()
	fb := feedback.NewHandler(deps.Feedback)

	mount := func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(banner))
		})
		r.Get("/health", health)

		r.Post("/signup", accounts.Signup)
		r.Post("/interview-questions", questions.GenerateQuestions)
		r.Post("/feedback", fb.Submit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(deps.Verifier))

			r.Post("/save-document", docs.SaveDocument)
			r.Get("/get-documents", docs.GetDocuments)
			r.Post("/download-document", docs.DownloadDocument)
			r.Delete("/delete-document", docs.DeleteDocument)

			r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
				userID, _ := middleware.UserIDFromContext(r.Context())
				socket.ServeWs(deps.Hub, w, r, userID)
			})
		})
	}

	// chi rejects an empty Route pattern.
	if deps.Prefix == "" {
		mount(r)
	} else {
		r.Route(deps.Prefix, mount)
	}
	return r
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}
