package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"unicode/utf8"

	"github.com/f3rmion/furi/internal/dom"
	"github.com/f3rmion/furi/internal/furigana"
	"github.com/f3rmion/furi/internal/settings"
	"github.com/go-chi/chi/v5"
)

type segmentRequest struct {
	Run     string `json:"run"`
	Reading string `json:"reading"`
}

type pairJSON struct {
	Char    string `json:"char"`
	Reading string `json:"reading"`
}

type segmentResponse struct {
	Pairs  []pairJSON `json:"pairs"`
	Markup string     `json:"markup"`
}

type annotateRequest struct {
	Text   string `json:"text"`
	Mode   string `json:"mode"`
	Format string `json:"format"`
}

type annotateResponse struct {
	Markup string `json:"markup"`
	Mode   string `json:"mode"`
}

type matchesRequest struct {
	Text     string `json:"text"`
	Katakana *bool  `json:"katakana,omitempty"`
}

type matchesResponse struct {
	Matches []furigana.Match `json:"matches"`
}

type lookupResponse struct {
	Character string   `json:"character"`
	Found     bool     `json:"found"`
	Readings  []string `json:"readings"`
	Numeral   []string `json:"numeral,omitempty"`
}

func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if !s.decode(w, r, &req) {
		return
	}

	seg, err := s.engine.Segment(req.Run, req.Reading)
	if err != nil {
		s.fail(w, err)
		return
	}

	resp := segmentResponse{
		Pairs:  make([]pairJSON, len(seg)),
		Markup: s.engine.Renderer().Render(seg),
	}
	for i, p := range seg {
		resp.Pairs[i] = pairJSON{Char: string(p.Char), Reading: p.Reading}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req annotateRequest
	if !s.decode(w, r, &req) {
		return
	}

	mode := settings.DefaultMode
	if req.Mode != "" {
		m, err := settings.ParseMode(req.Mode)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		mode = m
	}

	var markup string
	var err error
	switch req.Format {
	case "", "text":
		markup = s.engine.Convert(req.Text, mode)
	case "html":
		markup, err = dom.AnnotateFragment(req.Text, s.engine, mode)
	case "markdown":
		var out []byte
		out, err = s.markdown.Annotate([]byte(req.Text), mode)
		markup = string(out)
	default:
		jsonError(w, fmt.Sprintf("unknown format %q (want text, html or markdown)", req.Format), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, annotateResponse{Markup: markup, Mode: mode.String()})
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	var req matchesRequest
	if !s.decode(w, r, &req) {
		return
	}

	m := s.engine.Matcher()
	if req.Katakana != nil {
		m = furigana.NewMatcher(*req.Katakana)
	}

	matches := m.FindAll(req.Text)
	if matches == nil {
		matches = []furigana.Match{}
	}
	writeJSON(w, http.StatusOK, matchesResponse{Matches: matches})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	raw, err := url.PathUnescape(chi.URLParam(r, "char"))
	if err != nil || utf8.RuneCountInString(raw) != 1 {
		jsonError(w, "char must be a single character", http.StatusBadRequest)
		return
	}
	c, _ := utf8.DecodeRuneInString(raw)

	readings, found := s.engine.Store().Snapshot().Lookup(c)
	if readings == nil {
		readings = []string{}
	}
	numeral, _ := furigana.NumeralReadings(c)
	writeJSON(w, http.StatusOK, lookupResponse{
		Character: raw,
		Found:     found,
		Readings:  readings,
		Numeral:   numeral,
	})
}

// decode reads a JSON body into v, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("request body exceeds %d bytes", s.maxBodyBytes), http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// fail maps an operation error to a status code.
func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, furigana.ErrInvalidArgument) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Error("request failed", "error", err)
	jsonError(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
