package web

import (
	"encoding/json"
	"net/http"
)

type jError struct {
	Error string `json:"error"`
}

func (s *Server) writeJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	s.writeResult(w, res)
}

func (s *Server) writeResult(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		s.App.Logger().Warnf("Error when writing response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	data, merr := json.Marshal(&jError{Error: err.Error()})
	if merr != nil {
		s.App.Logger().Errorf("Error marshaling error '%v': %v", err, merr)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.App.Logger().Debugf("HERR %d: %s", status, data)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	s.writeResult(w, data)
}
