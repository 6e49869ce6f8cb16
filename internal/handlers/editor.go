package handlers

import (
	"encoding/gob"
	"net/http"

	applog "sugarbeat/internal/log"
	"sugarbeat/internal/nutrition"
	"sugarbeat/internal/serving"
	"sugarbeat/internal/tracker"
	"sugarbeat/models"
)

const sessionEditorKey = "editor:state"

// editorSession is kept in the user's session between requests. EntryID is
// set when the item being edited is an existing log entry.
type editorSession struct {
	EntryID uint
	State   serving.State
}

// editorActions maps each editor action onto the method it accepts.
var editorActions = map[string]string{
	"serving":  http.MethodPut,
	"commit":   http.MethodPost,
	"unit":     http.MethodPut,
	"nutrient": http.MethodPut,
	"save":     http.MethodPost,
}

func init() {
	gob.Register(editorSession{})
}

type editorBeginRequest struct {
	Kind string `json:"kind" validate:"required,oneof=provider custom recipe entry"`
	ID   string `json:"id" validate:"required,max=255"`
}

type editorServingRequest struct {
	Text string `json:"text" validate:"max=32"`
}

type editorUnitRequest struct {
	Unit string `json:"unit" validate:"required,max=32"`
}

type editorNutrientRequest struct {
	Nutrient nutrition.Nutrient `json:"nutrient"`
	Text     string             `json:"text" validate:"max=32"`
}

type editorResponse struct {
	EntryID uint          `json:"entry_id,omitempty"`
	Dirty   bool          `json:"dirty"`
	State   serving.State `json:"state"`
}

func projectEditor(session editorSession) editorResponse {
	state := session.State
	state.Current = state.Current.Clone()
	return editorResponse{EntryID: session.EntryID, Dirty: state.Dirty(), State: state}
}

// Editor drives the serving editor. One editing session per user session;
// beginning a new one replaces the previous state.
//
//	POST   /api/editor           begin from {kind, id}
//	GET    /api/editor           current state
//	DELETE /api/editor           discard
//	PUT    /api/editor/serving   record typed serving text
//	POST   /api/editor/commit    rescale to the typed serving
//	PUT    /api/editor/unit      change the serving unit label
//	PUT    /api/editor/nutrient  overwrite one nutrient
//	POST   /api/editor/save      log a new entry or update the edited one
func Editor(w http.ResponseWriter, r *http.Request) {
	userID, ok := authorize(w, r)
	if !ok {
		return
	}

	segments := resourcePath(r, "/api/editor")
	if len(segments) == 0 {
		switch r.Method {
		case http.MethodPost:
			beginEditor(w, r, userID)
		case http.MethodGet:
			if session, ok := loadEditor(w, r); ok {
				writeJSON(w, http.StatusOK, projectEditor(session))
			}
		case http.MethodDelete:
			sessionManager.Remove(r.Context(), sessionEditorKey)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if len(segments) > 1 {
		http.NotFound(w, r)
		return
	}

	action := segments[0]
	expected, known := editorActions[action]
	if !known {
		http.NotFound(w, r)
		return
	}
	if r.Method != expected {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	session, ok := loadEditor(w, r)
	if !ok {
		return
	}

	switch action {
	case "serving":
		var payload editorServingRequest
		if !decodeJSON(w, r, &payload) {
			return
		}
		session.State = session.State.Type(payload.Text)
	case "commit":
		session.State = session.State.Commit()
		applog.Debug(r.Context(), "serving committed", "user_id", userID, "serving_size", session.State.Current.ServingSize)
	case "unit":
		var payload editorUnitRequest
		if !decodeJSON(w, r, &payload) {
			return
		}
		session.State = session.State.SelectUnit(payload.Unit)
	case "nutrient":
		var payload editorNutrientRequest
		if !decodeJSON(w, r, &payload) {
			return
		}
		if !payload.Nutrient.Valid() {
			writeJSONError(w, http.StatusBadRequest, "unknown nutrient")
			return
		}
		session.State = serving.RescaleByNutrientEdit(session.State, payload.Nutrient, payload.Text)
	case "save":
		saveEditor(w, r, userID, session)
		return
	}

	sessionManager.Put(r.Context(), sessionEditorKey, session)
	writeJSON(w, http.StatusOK, projectEditor(session))
}

func beginEditor(w http.ResponseWriter, r *http.Request, userID uint) {
	var payload editorBeginRequest
	if !decodeJSON(w, r, &payload) {
		return
	}

	item, err := service.ItemForSource(r.Context(), userID, payload.Kind, payload.ID)
	if err != nil {
		writeServiceError(w, r, err, "unable to open food")
		return
	}

	session := editorSession{State: serving.Begin(item)}
	if payload.Kind == tracker.KindEntry {
		entryID, err := models.ParseID(payload.ID)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid entry id")
			return
		}
		session.EntryID = entryID
	}

	sessionManager.Put(r.Context(), sessionEditorKey, session)
	applog.Debug(r.Context(), "editor session started", "user_id", userID, "kind", payload.Kind, "id", payload.ID)
	writeJSON(w, http.StatusCreated, projectEditor(session))
}

// saveEditor commits pending serving text before persisting.
func saveEditor(w http.ResponseWriter, r *http.Request, userID uint, session editorSession) {
	state := session.State
	if state.Dirty() {
		state = state.Commit()
	}

	var (
		entry *models.FoodEntry
		err   error
	)
	status := http.StatusCreated
	if session.EntryID != 0 {
		entry, err = service.SaveEntryEdit(r.Context(), userID, session.EntryID, state.Current)
		status = http.StatusOK
	} else {
		entry, err = service.LogItem(r.Context(), userID, state.Current)
	}
	if err != nil {
		writeServiceError(w, r, err, "unable to save entry")
		return
	}

	sessionManager.Remove(r.Context(), sessionEditorKey)
	applog.Info(r.Context(), "editor saved", "user_id", userID, "entry_id", entry.ID, "updated", session.EntryID != 0)
	writeJSON(w, status, projectEntry(*entry))
}

func loadEditor(w http.ResponseWriter, r *http.Request) (editorSession, bool) {
	session, ok := sessionManager.Get(r.Context(), sessionEditorKey).(editorSession)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "no food is being edited")
		return editorSession{}, false
	}
	return session, true
}
