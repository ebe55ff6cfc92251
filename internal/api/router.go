package api

import (
	"fmt"
	"net/http"

	_ "github.com/rohits-web03/folio/docs"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/rohits-web03/folio/internal/api/handlers"
	"github.com/rohits-web03/folio/internal/api/middleware"
	"github.com/rohits-web03/folio/internal/api/session"
	"github.com/rs/cors"
)

type Deps struct {
	Documents *handlers.DocumentHandler
	Users     *handlers.UserHandler
	Resolver  *session.Resolver
	Cors      cors.Options
	Log       *zap.Logger
}

func SetupRouter(d Deps) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(d.Cors)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	// ---------- USER ROUTES ----------
	userMux := http.NewServeMux()
	userMux.HandleFunc("/auth/google", d.Users.GoogleAuth)
	userMux.HandleFunc("/logout", d.Users.Logout)
	userMux.HandleFunc("/whoami", d.Users.Whoami)
	userMux.HandleFunc("/generate_key", d.Users.GenerateKey)
	userMux.HandleFunc("/update", d.Users.Update)

	mainMux.Handle("/user/",
		http.StripPrefix("/user", userMux),
	)

	// ---------- DOCUMENT ROUTES ----------
	docMux := http.NewServeMux()
	docMux.HandleFunc("/list", d.Documents.List)
	docMux.HandleFunc("/get", d.Documents.Get)
	docMux.HandleFunc("/save", d.Documents.Save)
	docMux.HandleFunc("/delete", d.Documents.Delete)
	docMux.HandleFunc("/export", d.Documents.Export)

	mainMux.Handle("/doc/",
		http.StripPrefix(
			"/doc",
			middleware.Identify(d.Resolver)(docMux),
		),
	)

	d.Log.Info("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(d.Log)(handler)
	return handler
}
