package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/daybook-app/daybook/internal/api"
	"github.com/daybook-app/daybook/internal/common"
	"github.com/daybook-app/daybook/internal/journal"
	"github.com/daybook-app/daybook/internal/server/models"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

func candidateFromPayload(p api.EntryPayload) journal.Candidate {
	return journal.Candidate{
		EntryDate: p.EntryDate,
		Person:    p.Person,
		Grace:     p.Grace,
		Gratitude: p.Gratitude,
		UpdatedAt: p.UpdatedAt,
	}
}

func statusForOutcome(o journal.Outcome) string {
	// The created/updated split is an engine detail; the wire sees both as
	// one successful application.
	if o == journal.OutcomeNoOp {
		return api.StatusSkipped
	}
	return api.StatusUpserted
}

// requestFields maps validator failures on a request DTO to field-level
// messages keyed by the JSON field name.
func requestFields(err error) map[string][]string {
	fields := map[string][]string{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["request"] = []string{"The request body is invalid."}
		return fields
	}

	for _, fe := range verrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "This field is required."
		case "max":
			msg = fmt.Sprintf("This field may not be longer than %s characters.", fe.Param())
		case "min":
			msg = "This field must not be empty."
		case "email":
			msg = "This field must be a valid email address."
		default:
			msg = "This field is invalid."
		}
		name := jsonFieldName(fe)
		fields[name] = append(fields[name], msg)
	}
	return fields
}

func jsonFieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "DeviceID":
		return "device_id"
	case "Entries":
		return "entries"
	case "Email":
		return "email"
	case "Token":
		return "token"
	default:
		return fe.Field()
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.OKResponse{OK: true})
}

// handlePush is the batch sync endpoint: one result per input entry, in
// input order, with ok:true even when individual items are rejected.
func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	owner := userID(r)

	var req api.PushRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeValidationError(w, requestFields(err))
		return
	}

	candidates := make([]journal.Candidate, 0, len(req.Entries))
	for _, p := range req.Entries {
		candidates = append(candidates, candidateFromPayload(p))
	}

	results, err := s.entries.Push(r.Context(), owner, req.DeviceID, candidates)
	if err != nil {
		s.logger.Error(r.Context(), "push failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "sync failed, try again")
		return
	}

	resp := api.PushResponse{OK: true, Results: make([]api.PushResult, 0, len(results))}
	for _, res := range results {
		item := api.PushResult{EntryDate: res.EntryDate}
		if res.Rejected != nil {
			item.Status = api.StatusRejected
			item.Errors = res.Rejected.Fields
		} else {
			item.Status = statusForOutcome(res.Outcome)
		}
		resp.Results = append(resp.Results, item)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleUpsert is the direct synchronous single-entry path.
func (s *Server) handleUpsert(w http.ResponseWriter, r *http.Request) {
	owner := userID(r)

	var req api.EntryPayload
	if !decodeBody(w, r, &req) {
		return
	}

	outcome, entry, verr, err := s.entries.Upsert(r.Context(), owner, candidateFromPayload(req))
	if err != nil {
		s.logger.Error(r.Context(), "upsert failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "save failed, try again")
		return
	}
	if verr != nil {
		writeValidationError(w, verr.Fields)
		return
	}

	writeJSON(w, http.StatusOK, api.UpsertResponse{
		OK:     true,
		Status: statusForOutcome(outcome),
		Entry: api.EntryRef{
			EntryDate: entry.EntryDate.String(),
			UpdatedAt: entry.UpdatedAt,
		},
	})
}

func pathDate(w http.ResponseWriter, r *http.Request) (journal.Date, bool) {
	date, err := journal.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return journal.Date{}, false
	}
	return date, true
}

func apiEntry(e *models.Entry) *api.Entry {
	if e == nil {
		return nil
	}
	return &api.Entry{
		EntryDate: e.EntryDate.String(),
		Person:    e.Person,
		Grace:     e.Grace,
		Gratitude: e.Gratitude,
		UpdatedAt: e.UpdatedAt,
	}
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	entry, err := s.queries.ForUserDate(r.Context(), userID(r), date)
	if err != nil {
		s.logger.Error(r.Context(), "entry lookup failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, api.EntryResponse{OK: true, Entry: apiEntry(entry)})
}

func flashback(e *models.Entry) *api.Flashback {
	if e == nil {
		return nil
	}
	return &api.Flashback{
		EntryDate: e.EntryDate.String(),
		Snippet:   journal.Snippet(e.Version()),
	}
}

func (s *Server) handleFlashbacks(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}

	fb, err := s.queries.Flashbacks(r.Context(), userID(r), date)
	if err != nil {
		s.logger.Error(r.Context(), "flashback lookup failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, api.FlashbacksResponse{
		OK:      true,
		WeekAgo: flashback(fb.WeekAgo),
		YearAgo: flashback(fb.YearAgo),
	})
}

func (s *Server) handleMagicLinkRequest(w http.ResponseWriter, r *http.Request) {
	var req api.MagicLinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeValidationError(w, requestFields(err))
		return
	}

	token, err := s.users.RequestMagicLink(r.Context(), req.Email)
	if err != nil {
		s.logger.Error(r.Context(), "magic link request failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "could not create sign-in link")
		return
	}

	// Mail delivery is a separate concern; the token is logged so operators
	// (and development setups) can hand the link over.
	s.logger.Info(r.Context(), "magic link issued", "token", token)

	writeJSON(w, http.StatusOK, api.OKResponse{OK: true})
}

func (s *Server) handleMagicLinkConsume(w http.ResponseWriter, r *http.Request) {
	var req api.ConsumeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeValidationError(w, requestFields(err))
		return
	}

	accessToken, err := s.users.ConsumeMagicLink(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "invalid or expired sign-in link")
			return
		}
		s.logger.Error(r.Context(), "magic link consume failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}

	writeJSON(w, http.StatusOK, api.ConsumeResponse{OK: true, AccessToken: accessToken})
}
