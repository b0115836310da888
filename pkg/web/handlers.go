package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/tosih/mrdf-tool/pkg/codec"
	"github.com/tosih/mrdf-tool/pkg/compare"
	"github.com/tosih/mrdf-tool/pkg/editor"
	"github.com/tosih/mrdf-tool/pkg/models"
	"github.com/tosih/mrdf-tool/pkg/reader"
	"github.com/tosih/mrdf-tool/pkg/renderer"
)

var (
	errNoProfile      = errors.New("no profile bound to the session")
	errUnknownProfile = errors.New("unknown profile")
)

type rangeResponse struct {
	Offset int64 `json:"offset"`
	Length int   `json:"length"`
}

type StateResponse struct {
	File         string          `json:"file"`
	Profile      string          `json:"profile,omitempty"`
	Size         int             `json:"size"`
	State        string          `json:"state"`
	ChangedBytes int             `json:"changedBytes"`
	Ranges       []rangeResponse `json:"ranges"`
	Fields       []string        `json:"changedFields,omitempty"`
}

type bitResponse struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Set   bool   `json:"set"`
}

type optionResponse struct {
	Value int64  `json:"value"`
	Label string `json:"label"`
}

type FieldResponse struct {
	Name       string           `json:"name"`
	Section    string           `json:"section"`
	Offset     int64            `json:"offset"`
	Type       string           `json:"type"`
	Value      string           `json:"value,omitempty"`
	Original   string           `json:"original,omitempty"`
	Raw        string           `json:"raw,omitempty"`
	Changed    bool             `json:"changed"`
	Unmapped   bool             `json:"unmapped,omitempty"`
	NonBoolean bool             `json:"nonBoolean,omitempty"`
	Notes      string           `json:"notes,omitempty"`
	Error      string           `json:"error,omitempty"`
	Bits       []bitResponse    `json:"bits,omitempty"`
	Options    []optionResponse `json:"options,omitempty"`
}

type candidateResponse struct {
	Profile    string   `json:"profile"`
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons,omitempty"`
}

func (s *Server) stateLocked() StateResponse {
	rep := compare.Build(s.session)
	resp := StateResponse{
		File:         filepath.Base(s.filename),
		Size:         s.session.Len(),
		State:        s.session.State().String(),
		ChangedBytes: rep.Changed,
		Ranges:       []rangeResponse{},
	}
	if p := s.session.Profile(); p != nil {
		resp.Profile = p.Key
	}
	for _, rg := range rep.Ranges {
		resp.Ranges = append(resp.Ranges, rangeResponse{Offset: rg.Offset, Length: rg.Length})
	}
	for _, fc := range rep.Fields {
		resp.Fields = append(resp.Fields, fc.Def.Name)
	}
	return resp
}

func (s *Server) fieldLocked(f models.FieldDef, detail bool) FieldResponse {
	resp := FieldResponse{
		Name:    f.Name,
		Section: f.Section,
		Offset:  f.Offset,
		Type:    f.Type.String(),
		Notes:   f.Notes,
	}
	v, err := s.session.ReadField(f)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	orig, _ := s.session.ReadOriginalField(f)
	resp.Value = renderer.ValueString(v, f)
	resp.Raw = fmt.Sprintf("%0*X", f.Width()*2, v.Raw)
	resp.Changed = v.Raw != orig.Raw
	resp.Unmapped = v.Unmapped
	resp.NonBoolean = v.NonBoolean()
	if !detail {
		return resp
	}

	resp.Original = renderer.ValueString(orig, f)
	if f.Type == models.Bitmask8 {
		for _, b := range codec.DecodeBits(v.Byte(), f.BitLabels) {
			resp.Bits = append(resp.Bits, bitResponse{Index: b.Index, Label: b.Name(), Set: b.Set})
		}
	}
	for _, k := range f.Enum.Keys() {
		resp.Options = append(resp.Options, optionResponse{Value: k, Label: f.Enum[k]})
	}
	return resp
}

func (s *Server) lookupLocked(name string) (models.FieldDef, error) {
	p := s.session.Profile()
	if p == nil {
		return models.FieldDef{}, errNoProfile
	}
	return p.Lookup(name)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.session.Profile()
	if p == nil {
		writeError(w, errNoProfile)
		return
	}
	query := r.URL.Query().Get("q")
	fields := reader.Filter(reader.ReadFields(s.session.Snapshot(), p), query)
	out := make([]FieldResponse, 0, len(fields))
	for _, fi := range fields {
		out = append(out, s.fieldLocked(fi.Def, false))
	}
	writeJSON(w, http.StatusOK, out)
}

type fieldRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		f, err := s.lookupLocked(r.URL.Query().Get("name"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.fieldLocked(f, true))

	case http.MethodPost:
		var req fieldRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		f, err := s.lookupLocked(req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		v, err := codec.Parse(req.Value, f)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.session.WriteField(f, v); err != nil {
			writeError(w, err)
			return
		}
		s.log.Debug("field written", "field", f.Name, "value", req.Value)
		writeJSON(w, http.StatusOK, s.fieldLocked(f, true))

	default:
		methodNotAllowed(w)
	}
}

type bitRequest struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
	Value bool   `json:"value"`
}

func (s *Server) handleBit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var req bitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	f, err := s.lookupLocked(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.session.WriteBitmaskBit(f, req.Index, req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.fieldLocked(f, true))
}

type hexRequest struct {
	Offset string `json:"offset"`
	Bytes  string `json:"bytes"`
	Length *int   `json:"length,omitempty"` // selection length; must equal the byte count
}

func (s *Server) handleHex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var req hexRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	offset, err := editor.ParseOffset(req.Offset)
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := editor.ParseHexBytes(req.Bytes)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Length != nil {
		err = s.session.ReplaceSelection(offset, *req.Length, b)
	} else {
		err = s.session.OverwriteHex(offset, b)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.stateLocked())
}

type revertRequest struct {
	All    bool   `json:"all,omitempty"`
	Name   string `json:"name,omitempty"`
	Offset string `json:"offset,omitempty"`
	Length int    `json:"length,omitempty"`
}

func (s *Server) handleRevert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var req revertRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	switch {
	case req.All:
		s.session.Discard()
	case req.Name != "":
		f, err := s.lookupLocked(req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.session.RevertField(f); err != nil {
			writeError(w, err)
			return
		}
	case req.Offset != "":
		offset, err := editor.ParseOffset(req.Offset)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.session.RevertRange(offset, req.Length); err != nil {
			writeError(w, err)
			return
		}
	default:
		writeError(w, fmt.Errorf("revert needs all, name or offset"))
		return
	}
	writeJSON(w, http.StatusOK, s.stateLocked())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	s.mu.Lock()
	data := s.session.Snapshot()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(s.filename)))
	w.Write(data)
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if s.detector == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "detection is not configured", Kind: "disabled"})
		return
	}
	s.mu.Lock()
	data := s.session.Snapshot()
	s.mu.Unlock()

	ranked := s.detector.Detect(data, s.filename)
	out := make([]candidateResponse, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, candidateResponse{
			Profile:    c.Profile.Key,
			Label:      c.Profile.Label,
			Confidence: c.Confidence,
			Reasons:    c.Reasons,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type profileRequest struct {
	Key string `json:"key"`
}

// handleProfile rebinds the session, overriding detection. The buffers are
// not touched.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.registry == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "profile switching is not configured", Kind: "disabled"})
		return
	}
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, ok := s.registry.Get(req.Key)
	if !ok {
		writeError(w, fmt.Errorf("%w %q (known: %s)", errUnknownProfile, req.Key, strings.Join(s.registry.Keys(), ", ")))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.SetProfile(p)
	s.log.Info("profile switched", "file", s.filename, "profile", p.Key)
	writeJSON(w, http.StatusOK, s.stateLocked())
}

type saveRequest struct {
	Path string `json:"path,omitempty"` // save as; empty overwrites the served file
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.save == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "saving is disabled", Kind: "disabled"})
		return
	}
	var req saveRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.filename
	if req.Path != "" {
		target = req.Path
	}
	if s.session.State() == editor.Clean && target == s.filename {
		writeJSON(w, http.StatusOK, map[string]any{"message": "nothing to save", "state": s.stateLocked()})
		return
	}
	msg, err := s.save(s.session, target)
	if err != nil {
		s.log.Error("save failed", "file", target, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), Kind: "io"})
		return
	}
	s.session.Commit()
	s.filename = target
	writeJSON(w, http.StatusOK, map[string]any{"message": msg, "state": s.stateLocked()})
}
