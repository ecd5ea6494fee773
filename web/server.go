// Package web exposes a document and its spells over HTTP.
package web

import (
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/gekko3d/spellbook"
	"github.com/gekko3d/spellbook/scene"
)

// Server serializes every request against one document. The document model
// is single threaded, so reads take the same lock as casts.
type Server struct {
	App *spellbook.App
	Doc *scene.Document

	// OnChange runs after a cast that changed the document, still under the lock.
	OnChange func(doc *scene.Document) error

	// AccessLog receives the request log. Nil means stdout.
	AccessLog io.Writer

	mu sync.Mutex
}

func NewServer(app *spellbook.App, doc *scene.Document) *Server {
	return &Server{App: app, Doc: doc}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/action/{index}/{page}/{name}", s.HandlerAction).Methods(http.MethodPost)
	r.HandleFunc("/json/spells", s.HandlerAjaxSpells).Methods(http.MethodGet)
	r.HandleFunc("/json/nodes/{index}", s.HandlerAjaxNode).Methods(http.MethodGet)
	r.HandleFunc("/json/nodes", s.HandlerAjaxNodes).Methods(http.MethodGet)
	r.HandleFunc("/json/clipboard", s.HandlerAjaxClipboard).Methods(http.MethodGet)
	r.HandleFunc("/dump/nodes/{index}", s.HandlerDumpNode).Methods(http.MethodGet)
	r.HandleFunc("/icon/{page}/{name}", s.HandlerIcon).Methods(http.MethodGet)

	out := s.AccessLog
	if out == nil {
		out = os.Stdout
	}
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r)
	return handlers.LoggingHandler(out, h)
}

func (s *Server) ListenAndServe(addr string) error {
	s.App.Logger().Infof("[web] Starting server %v", addr)
	return http.ListenAndServe(addr, s.Handler())
}
