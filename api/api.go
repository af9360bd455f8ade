package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
)

func Err(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusBadRequest)
	w.Write([]byte(err.Error()))
	fmt.Fprintln(os.Stderr, err)
}

// Callbacks is what the control surface needs from the engine.
type Callbacks interface {
	Status() (interface{}, error)
	SetBPM(bpm float64) error
	SetLevel(level float64) error
	Start() error
	Stop() error
}

type handler struct {
	Callbacks Callbacks
}

func (h *handler) handleStatusGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.Callbacks.Status()
	if err != nil {
		Err(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s); err != nil {
		Err(w, err)
	}
}

func (h *handler) handleBPMPut(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BPM float64 `json:"bpm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		Err(w, err)
		return
	}
	if err := h.Callbacks.SetBPM(body.BPM); err != nil {
		Err(w, err)
	}
}

func (h *handler) handleLevelPut(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level float64 `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		Err(w, err)
		return
	}
	if body.Level < 0 || body.Level > 1 {
		Err(w, fmt.Errorf("level %v out of range [0,1]", body.Level))
		return
	}
	if err := h.Callbacks.SetLevel(body.Level); err != nil {
		Err(w, err)
	}
}

func (h *handler) handleStartPost(w http.ResponseWriter, r *http.Request) {
	if err := h.Callbacks.Start(); err != nil {
		Err(w, err)
	}
}

func (h *handler) handleStopPost(w http.ResponseWriter, r *http.Request) {
	if err := h.Callbacks.Stop(); err != nil {
		Err(w, err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func NewHandler(cb Callbacks) http.Handler {
	h := &handler{
		Callbacks: cb,
	}

	sr := mux.NewRouter()
	sr.HandleFunc("/status", h.handleStatusGet).Methods(http.MethodGet)
	sr.HandleFunc("/bpm", h.handleBPMPut).Methods(http.MethodPut)
	sr.HandleFunc("/level", h.handleLevelPut).Methods(http.MethodPut)
	sr.HandleFunc("/start", h.handleStartPost).Methods(http.MethodPost)
	sr.HandleFunc("/stop", h.handleStopPost).Methods(http.MethodPost)

	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.PathPrefix("/").Handler(sr)
	return r
}
