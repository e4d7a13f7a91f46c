package server

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/profile-architect/internal/generation"
	"github.com/jonathan/profile-architect/internal/ingestion"
	"github.com/jonathan/profile-architect/internal/logging"
	"github.com/jonathan/profile-architect/internal/rendering"
	"github.com/jonathan/profile-architect/internal/types"
	"github.com/jonathan/profile-architect/internal/workflow"
)

// maxRequestBytes caps request bodies; attachments arrive base64-encoded.
const maxRequestBytes = 128 << 20

// pingInterval keeps idle event streams open through proxies.
const pingInterval = 15 * time.Second

// SessionResponse is the client view of a session. Attachment bytes are never echoed.
type SessionResponse struct {
	ID              string                                `json:"id"`
	Step            workflow.Step                         `json:"step"`
	Discovery       types.DiscoveryAnswers                `json:"discovery"`
	Personal        types.PersonalDetails                 `json:"personal"`
	RawContent      string                                `json:"rawContent"`
	PortfolioURL    string                                `json:"portfolioUrl,omitempty"`
	AttachmentCount int                                   `json:"attachmentCount"`
	HasPortrait     bool                                  `json:"hasPortrait"`
	Result          *types.GeneratedProfile               `json:"result"`
	Error           string                                `json:"error,omitempty"`
	Stages          map[generation.Stage]generation.State `json:"stages"`
}

// ProfileRequest is the body of the profile submission.
type ProfileRequest struct {
	Personal     types.PersonalDetails `json:"personal"`
	RawContent   string                `json:"rawContent"`
	PortfolioURL string                `json:"portfolioUrl,omitempty"`
	Attachments  []string              `json:"attachments,omitempty"` // data URLs
	Portrait     string                `json:"portrait,omitempty"`    // data:image/... URL
}

// RefineRequest is the body of a refinement.
type RefineRequest struct {
	Instruction string `json:"instruction"`
}

// PatchRequest is the body of an in-place edit. HTML is the edited markup of a
// contentEditable region and is flattened to text; Content is taken as-is.
type PatchRequest struct {
	Content *string `json:"content,omitempty"`
	HTML    *string `json:"html,omitempty"`
}

// CoverLetterResponse returns the generated letter.
type CoverLetterResponse struct {
	CoverLetter string `json:"coverLetter"`
}

func sessionResponse(id uuid.UUID, snap workflow.Snapshot) SessionResponse {
	return SessionResponse{
		ID:              id.String(),
		Step:            snap.Step,
		Discovery:       snap.Discovery,
		Personal:        snap.Personal,
		RawContent:      snap.Profile.RawContent,
		PortfolioURL:    snap.Profile.PortfolioURL,
		AttachmentCount: len(snap.Profile.Attachments),
		HasPortrait:     snap.Portrait != "",
		Result:          snap.Result,
		Error:           snap.Error,
		Stages:          snap.Stages,
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	return nil
}

// respondSession writes the current view of a session.
func (s *Server) respondSession(w http.ResponseWriter, status int, id uuid.UUID, sess *workflow.Session) {
	s.jsonResponse(w, status, sessionResponse(id, sess.Snapshot()))
}

// handleCreateSession starts a new session at the discovery step
func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id, sess := s.sessions.create()
	logging.Debug().Str("session", id.String()).Msg("session created")
	s.respondSession(w, http.StatusCreated, id, sess)
}

// handleGetSession returns the session state
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, id, sess)
}

// handleDeleteSession discards a session
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, _, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, err)
		return
	}
	s.sessions.remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleSubmitDiscovery records the strategy answers. Omitted structure and tone keep their defaults.
func (s *Server) handleSubmitDiscovery(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, err)
		return
	}

	answers := types.DefaultDiscoveryAnswers()
	if err := decodeJSON(w, r, &answers); err != nil {
		s.failResponse(w, err)
		return
	}
	if err := sess.SubmitDiscovery(answers); err != nil {
		s.failResponse(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, id, sess)
}

// handleSubmitProfile records the inputs and runs the main generation. The response is sent
// once the model answers; progress is also published on the event stream.
func (s *Server) handleSubmitProfile(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, err)
		return
	}

	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failResponse(w, err)
		return
	}

	for i, src := range req.Attachments {
		if !strings.HasPrefix(src, "data:") {
			s.failResponse(w, &ErrValidation{Field: "attachments", Message: fmt.Sprintf("attachment %d must be a data URL", i+1)})
			return
		}
	}
	if req.Portrait != "" && !strings.HasPrefix(req.Portrait, "data:image/") {
		s.failResponse(w, &ErrValidation{Field: "portrait", Message: "portrait must be an image data URL"})
		return
	}

	attachments, err := ingestion.LoadAttachments(r.Context(), req.Attachments)
	if err != nil {
		s.failResponse(w, err)
		return
	}

	profile := types.ProfileData{
		RawContent:   ingestion.CleanText(req.RawContent),
		PortfolioURL: strings.TrimSpace(req.PortfolioURL),
		Attachments:  attachments,
	}
	if _, err := sess.SubmitProfile(r.Context(), req.Personal, profile, req.Portrait); err != nil {
		s.failResponse(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, id, sess)
}

// handleBack navigates back to the discovery or input step
func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, err)
		return
	}

	switch target := r.PathValue("target"); workflow.Step(target) {
	case workflow.StepDiscovery:
		err = sess.BackToDiscovery()
	case workflow.StepInput:
		err = sess.BackToInput()
	default:
		err = &ErrValidation{Field: "target", Message: fmt.Sprintf("cannot go back to %q", target)}
	}
	if err != nil {
		s.failResponse(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, id, sess)
}

// handleReset starts a new narrative in the same session
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, err)
		return
	}
	sess.Reset()
	s.respondSession(w, http.StatusOK, id, sess)
}

// handleRefine rewrites the current profile following an instruction
func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, err)
		return
	}

	var req RefineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failResponse(w, err)
		return
	}
	if _, err := sess.Refine(r.Context(), req.Instruction); err != nil {
		s.failResponse(w, err)
		return
	}
	s.respondSession(w, http.StatusOK, id, sess)
}

// handleCoverLetter writes or replaces the cover letter
func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	_, sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, err)
		return
	}

	letter, err := sess.GenerateCoverLetter(r.Context())
	if err != nil {
		s.failResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, CoverLetterResponse{CoverLetter: letter})
}

// handlePatchSection replaces the content of one section
func (s *Server) handlePatchSection(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.failResponse(w, &ErrValidation{Field: "index", Message: "section index must be an integer"})
		return
	}
	s.patch(w, r, "section", func(sess *workflow.Session, content string) (bool, error) {
		return sess.PatchSection(index, content)
	})
}

// handlePatchSummary replaces the executive summary
func (s *Server) handlePatchSummary(w http.ResponseWriter, r *http.Request) {
	s.patch(w, r, "summary", (*workflow.Session).PatchSummary)
}

// handlePatchPositioning replaces the one-line positioning
func (s *Server) handlePatchPositioning(w http.ResponseWriter, r *http.Request) {
	s.patch(w, r, "positioning", (*workflow.Session).PatchPositioning)
}

// patch decodes a PatchRequest and applies it with apply.
func (s *Server) patch(w http.ResponseWriter, r *http.Request, target string, apply func(*workflow.Session, string) (bool, error)) {
	id, sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, err)
		return
	}

	var req PatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.failResponse(w, err)
		return
	}

	var content string
	switch {
	case req.Content != nil:
		content = *req.Content
	case req.HTML != nil:
		content, err = ingestion.EditableText(*req.HTML)
		if err != nil {
			s.failResponse(w, &ErrValidation{Field: "html", Message: err.Error()})
			return
		}
	default:
		s.failResponse(w, &ErrValidation{Field: "content", Message: "content or html is required"})
		return
	}

	ok, err := apply(sess, content)
	if err != nil {
		s.failResponse(w, err)
		return
	}
	if !ok {
		s.errorResponse(w, http.StatusNotFound, target+" not found")
		return
	}
	s.respondSession(w, http.StatusOK, id, sess)
}

// handleExport serializes the current profile as a download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	_, sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, err)
		return
	}

	doc := sess.Store().Current()
	if doc == nil {
		s.failResponse(w, generation.ErrNoDocument)
		return
	}
	_, personal, _, portrait := sess.Inputs()

	format := r.PathValue("format")
	var data []byte
	switch format {
	case rendering.ExtWord:
		data, err = rendering.RenderWordDocument(doc, personal)
	case rendering.ExtText:
		var text string
		text, err = rendering.RenderATSText(doc, personal)
		data = []byte(text)
	case rendering.ExtHTML, rendering.ExtPDF, rendering.ExtJPEG:
		var html string
		html, err = rendering.RenderPrintHTML(doc, personal, portrait, s.settings)
		if err != nil {
			break
		}
		switch format {
		case rendering.ExtPDF:
			data, err = s.capturer.Render(r.Context(), html, s.settings)
		case rendering.ExtJPEG:
			data, err = s.capturer.Snapshot(r.Context(), html, s.settings)
		default:
			data = []byte(html)
		}
	default:
		err = &ErrValidation{Field: "format", Message: fmt.Sprintf("unsupported export format %q", format)}
	}
	if err != nil {
		s.failResponse(w, err)
		return
	}

	w.Header().Set("Content-Type", rendering.MIMEType(format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": rendering.Filename(personal.FullName, format),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Warn().Err(err).Str("format", format).Msg("failed to write export")
	}
}

// handleSessionEvents streams stage transitions as Server-Sent Events. The first event is
// the current session view.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.sessions.get(r.PathValue("id"))
	if err != nil {
		s.failResponse(w, err)
		return
	}

	events, unsubscribe := sess.Orchestrator().Subscribe()
	defer unsubscribe()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := sse.WriteEvent("session", sessionResponse(id, sess.Snapshot())); err != nil {
		return
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := sse.WriteStage(ev); err != nil {
				return
			}
		case <-ping.C:
			if err := sse.WritePing(); err != nil {
				return
			}
		}
	}
}
