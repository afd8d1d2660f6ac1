package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/importers"
	"github.com/givin-app/givin/internal/mapping"
	"github.com/givin-app/givin/internal/tabular"
)

const importSampleRows = 5

// ImportProcessor runs the processing step of an import.
type ImportProcessor interface {
	Process(ctx context.Context, s importers.State) importers.State
}

// ImportRecorder stores the outcome of a finished import.
type ImportRecorder interface {
	Record(userID uint, actor, source string, result *importers.ImportResult) string
}

// ImportsController drives interactive imports: upload, preview, column
// mapping, processing and summary.
type ImportsController struct {
	sessions       *importers.SessionStore
	pipeline       ImportProcessor
	recorder       ImportRecorder
	maxUploadBytes int64
}

func NewImportsController(sessions *importers.SessionStore, pipeline ImportProcessor, recorder ImportRecorder, maxUploadBytes int64) *ImportsController {
	return &ImportsController{
		sessions:       sessions,
		pipeline:       pipeline,
		recorder:       recorder,
		maxUploadBytes: maxUploadBytes,
	}
}

// importView is the JSON shape of an import session.
type importView struct {
	ID              string                  `json:"id"`
	Kind            importers.Kind          `json:"kind"`
	Step            importers.Step          `json:"step"`
	FileName        string                  `json:"file_name,omitempty"`
	DatasetCount    int                     `json:"dataset_count"`
	ActiveDataset   int                     `json:"active_dataset"`
	Headers         []string                `json:"headers"`
	RowCount        int                     `json:"row_count"`
	SampleRows      []tabular.Row           `json:"sample_rows"`
	Fields          []mapping.TargetField   `json:"fields"`
	Mapping         mapping.Mapping         `json:"mapping"`
	MissingRequired []string                `json:"missing_required"`
	Result          *importers.ImportResult `json:"result,omitempty"`
	AuditFile       string                  `json:"audit_file,omitempty"`
	Error           string                  `json:"error,omitempty"`
}

func newImportView(sess importers.Session) importView {
	st := sess.State
	view := importView{
		ID:              sess.ID,
		Kind:            st.Kind,
		Step:            st.Step,
		FileName:        sess.FileName,
		ActiveDataset:   st.ActiveDataset,
		Headers:         []string{},
		SampleRows:      []tabular.Row{},
		Fields:          st.Kind.Fields(),
		Mapping:         st.Mapping,
		MissingRequired: []string{},
		Result:          st.Result,
	}
	if st.Datasets != nil {
		view.DatasetCount = st.Datasets.Len()
	}
	if st.Table != nil {
		view.Headers = st.Table.Headers
		view.RowCount = st.Table.RowCount()
		view.SampleRows = st.Table.Sample(importSampleRows)
	}
	if st.Step == importers.StepMapColumns {
		for _, f := range mapping.MissingRequired(st.Mapping, st.Kind.Fields()) {
			view.MissingRequired = append(view.MissingRequired, f.ID)
		}
	}
	if st.Err != nil {
		view.Error = st.Err.Error()
	}
	return view
}

// session loads the import and checks that it belongs to the caller.
func (ic *ImportsController) session(c *gin.Context) (importers.Session, bool) {
	sess, err := ic.sessions.Get(c.Param("id"))
	if err != nil || (sess.UserID != 0 && sess.UserID != auth.GetUserID(c)) {
		respondNotFound(c, "import")
		return importers.Session{}, false
	}
	return sess, true
}

// respondState sends the session, or the error its last event produced.
func (ic *ImportsController) respondState(c *gin.Context, sess importers.Session) {
	view := newImportView(sess)
	err := sess.State.Err
	if err == nil {
		c.JSON(http.StatusOK, view)
		return
	}

	var incomplete *importers.IncompleteMappingError
	switch {
	case errors.Is(err, importers.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "invalid_transition", Details: view})
	case errors.As(err, &incomplete):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "incomplete_mapping", Details: view})
	default:
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "import_failed", Details: view})
	}
}

type createImportRequest struct {
	Kind string `json:"kind"`
}

// Create handles POST /api/imports and starts a session at the upload step.
func (ic *ImportsController) Create(c *gin.Context) {
	var req createImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	kind, err := importers.ParseKind(req.Kind)
	if err != nil {
		respondValidation(c, "unknown_kind", err.Error(), gin.H{"kinds": []importers.Kind{importers.KindDonations, importers.KindDonors}})
		return
	}

	ic.sessions.Prune()
	sess := ic.sessions.Create(kind, auth.GetUserID(c), "")
	respondCreated(c, newImportView(sess))
}

// Get handles GET /api/imports/:id
func (ic *ImportsController) Get(c *gin.Context) {
	sess, ok := ic.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newImportView(sess))
}

// Upload handles POST /api/imports/:id/file with a multipart "file" field.
// CSV, TXT and XLSX files are accepted.
func (ic *ImportsController) Upload(c *gin.Context) {
	sess, ok := ic.session(c)
	if !ok {
		return
	}

	file, ok := readUpload(c, "file", ic.maxUploadBytes)
	if !ok {
		return
	}
	text, err := file.tabularText()
	if errors.Is(err, errNotTabular) {
		respondValidation(c, "unsupported_file_type", "only csv, txt and xlsx files can be imported", gin.H{"name": file.Name})
		return
	}
	if err != nil {
		respondValidation(c, "unreadable_file", err.Error(), gin.H{"name": file.Name})
		return
	}

	sess, err = ic.sessions.Apply(sess.ID, importers.FileLoaded{Text: text})
	if err != nil {
		respondNotFound(c, "import")
		return
	}
	if sess.State.Err == nil {
		if err := ic.sessions.SetFileName(sess.ID, file.Name); err == nil {
			sess.FileName = file.Name
		}
	}
	ic.respondState(c, sess)
}

type importEventRequest struct {
	Event  string `json:"event"`
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Column string `json:"column"`
}

func (r importEventRequest) toEvent() (importers.Event, bool) {
	switch r.Event {
	case "back":
		return importers.Back{}, true
	case "continue":
		return importers.Continue{}, true
	case "select_dataset":
		return importers.SelectDataset{Index: r.Index}, true
	case "set_mapping":
		return importers.SetMapping{Field: r.Field, Column: r.Column}, true
	case "confirm":
		return importers.ConfirmMapping{}, true
	case "retry":
		return importers.Retry{}, true
	case "close":
		return importers.Close{}, true
	}
	return nil, false
}

// Event handles POST /api/imports/:id/events. Confirming the mapping runs the
// import synchronously and answers with the summary.
func (ic *ImportsController) Event(c *gin.Context) {
	sess, ok := ic.session(c)
	if !ok {
		return
	}

	var req importEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	ev, ok := req.toEvent()
	if !ok {
		respondBadRequest(c, "unknown event "+req.Event)
		return
	}

	sess, err := ic.sessions.Apply(sess.ID, ev)
	if err != nil {
		respondNotFound(c, "import")
		return
	}

	var auditFile string
	if sess.State.Step == importers.StepProcessing && sess.State.Err == nil {
		sess, auditFile = ic.process(c, sess)
	}

	if sess.State.Step == importers.StepClosed {
		ic.sessions.Delete(sess.ID)
	}

	if sess.State.Err == nil && auditFile != "" {
		view := newImportView(sess)
		view.AuditFile = auditFile
		c.JSON(http.StatusOK, view)
		return
	}
	ic.respondState(c, sess)
}

// process runs the pipeline outside the session lock. No event other than the
// pipeline's own outcome is valid while a session is processing. Processing
// is detached from request cancellation and a finished run is always recorded.
func (ic *ImportsController) process(c *gin.Context, sess importers.Session) (importers.Session, string) {
	processed := ic.pipeline.Process(context.WithoutCancel(c.Request.Context()), sess.State)

	updated, err := ic.sessions.Update(sess.ID, func(importers.State) importers.State {
		return processed
	})
	if err != nil {
		sess.State = processed
		updated = sess
	}

	if processed.Result == nil || ic.recorder == nil {
		return updated, ""
	}
	source := updated.FileName
	if source == "" {
		source = string(updated.State.Kind) + " upload"
	}
	return updated, ic.recorder.Record(auth.GetUserID(c), auth.Actor(c), source, processed.Result)
}

// Delete handles DELETE /api/imports/:id and discards the session.
func (ic *ImportsController) Delete(c *gin.Context) {
	sess, ok := ic.session(c)
	if !ok {
		return
	}
	if sess.State.Step == importers.StepProcessing {
		respondError(c, http.StatusConflict, "import is processing")
		return
	}
	ic.sessions.Delete(sess.ID)
	respondSuccess(c, "import discarded")
}
