package grid

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/hourdeck/hourdeck/internal/hours"
)

// Reconciler is the sole writer of session state. Each edit runs through
// Validating -> Classifying -> RemoteInFlight -> Committed | RolledBack: the
// matching remote call is issued first and local registries, coordinates,
// and totals are updated only once it succeeds. On failure the caller gets
// back the previous display value and a banner is appended; nothing else
// changes.
//
// At most one edit may be in flight per cell. A second edit against a cell
// (or a header whose cascade covers it) while a call is outstanding is
// rejected rather than queued.
type Reconciler struct {
	mu       sync.Mutex
	session  *Session
	client   hours.Client
	observer EditObserver
	inflight map[CellKey]bool
}

// NewReconciler creates a Reconciler bound to one session and client.
func NewReconciler(session *Session, client hours.Client, observers ...EditObserver) *Reconciler {
	return &Reconciler{
		session:  session,
		client:   client,
		observer: editObserverOrNoop(observers),
		inflight: make(map[CellKey]bool),
	}
}

// Session returns the session this reconciler writes to.
func (r *Reconciler) Session() *Session { return r.session }

// Load fetches the week's bulk payload and replaces the session contents.
func (r *Reconciler) Load(ctx context.Context) error {
	payload, err := r.client.FetchWeek(ctx, r.session.WeekStart())
	if err != nil {
		r.mu.Lock()
		r.session.PushBanner(hours.UserMessage(err))
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.LoadWeek(payload)
}

// Apply reconciles proposed edits. Exactly one edit is accepted per call;
// multi-cell batches (paste) are rejected outright.
func (r *Reconciler) Apply(ctx context.Context, edits ...Edit) Outcome {
	start := time.Now()

	if len(edits) != 1 {
		err := reject(RejectBatch, "Only one cell may be edited at a time.")
		r.mu.Lock()
		r.session.PushBanner(err.Message)
		r.mu.Unlock()
		out := rolledBack(ActionNone, "", "", err)
		r.observe(ctx, Edit{}, out, time.Since(start))
		return out
	}

	edit := edits[0]
	edit.Before = strings.TrimSpace(edit.Before)
	edit.After = strings.TrimSpace(edit.After)

	out := r.apply(ctx, edit)
	r.observe(ctx, edit, out, time.Since(start))
	return out
}

func (r *Reconciler) observe(ctx context.Context, edit Edit, out Outcome, d time.Duration) {
	r.observer.ObserveEdit(ctx, EditEvent{
		Grid:     r.session.Schema().Name,
		Action:   out.Action,
		State:    out.State,
		Row:      edit.Row,
		Col:      edit.Col,
		Duration: d,
		Err:      out.Err,
	})
}

func (r *Reconciler) apply(ctx context.Context, edit Edit) Outcome {
	schema := r.session.Schema()

	switch {
	case edit.Before == edit.After:
		return noop(edit.Before)

	case edit.Row == 0 && edit.Col < schema.FirstCol():
		// The corner never carries a value; rejected silently.
		return rolledBack(ActionNone, edit.Before, "",
			reject(RejectInvalidValue, "the corner cell cannot be edited"))

	case edit.Row == 0:
		return r.applyHeaderEdit(ctx, edit, r.colAxis(edit.Col))

	case edit.Col < schema.FirstCol():
		if schema.TupleRows() {
			return r.applyTupleRowEdit(ctx, edit)
		}
		return r.applyHeaderEdit(ctx, edit, r.rowAxis(edit.Row))

	default:
		return r.applyCellEdit(ctx, edit)
	}
}

// fail pushes a banner and returns a rolled-back outcome restoring before.
// Caller must hold r.mu.
func (r *Reconciler) fail(action Action, before, editID string, err *RejectError) Outcome {
	r.session.PushBanner(err.Message)
	return rolledBack(action, before, editID, err)
}

// ── header edits (shared row/column logic) ───────────────────────────────────

// axisView adapts one grid axis so header add/remove/replace logic is shared
// between rows and columns instead of duplicated per variant.
type axisView struct {
	kind          domain.EntityKind
	editable      bool
	coord         int
	headerKey     CellKey
	next          func() int
	coordOf       func(id string) (int, bool)
	assign        func(id string) int
	release       func(id string)
	rebind        func(oldID, newID string)
	cellsIn       func(coord int) []*domain.TimeCell
	addAction     Action
	removeAction  Action
	replaceAction Action
}

func (r *Reconciler) colAxis(col int) axisView {
	s := r.session
	return axisView{
		kind:          s.schema.ColKind,
		editable:      s.schema.ColEditable,
		coord:         col,
		headerKey:     CellKey{Row: 0, Col: col},
		next:          s.cols.Next,
		coordOf:       s.cols.Coordinate,
		assign:        s.cols.Assign,
		release:       s.cols.Release,
		rebind:        s.cols.Rebind,
		cellsIn:       s.cellsInCol,
		addAction:     ActionAddColumn,
		removeAction:  ActionRemoveColumn,
		replaceAction: ActionReplaceColumn,
	}
}

func (r *Reconciler) rowAxis(row int) axisView {
	s := r.session
	return axisView{
		kind:          s.schema.RowKinds[0],
		editable:      true,
		coord:         row,
		headerKey:     CellKey{Row: row, Col: 0},
		next:          s.rows.Next,
		coordOf:       s.rows.Coordinate,
		assign:        s.rows.Assign,
		release:       s.rows.Release,
		rebind:        s.rows.Rebind,
		cellsIn:       s.cellsInRow,
		addAction:     ActionAddRow,
		removeAction:  ActionRemoveRow,
		replaceAction: ActionReplaceRow,
	}
}

func (r *Reconciler) applyHeaderEdit(ctx context.Context, edit Edit, axis axisView) Outcome {
	s := r.session

	r.mu.Lock()

	if !axis.editable {
		defer r.mu.Unlock()
		return r.fail(ActionNone, edit.Before, "",
			reject(RejectInvalidValue, "The %ss of this grid are fixed.", axis.kind))
	}
	if r.inflight[axis.headerKey] {
		defer r.mu.Unlock()
		return r.fail(ActionNone, edit.Before, "",
			reject(RejectEditInFlight, "That %s still has a pending change.", axis.kind))
	}

	if edit.Before == "" {
		defer r.mu.Unlock()
		return r.addHeaderEntity(edit, axis)
	}

	old, ok := s.visible[axis.kind].GetByLabel(edit.Before)
	if !ok {
		defer r.mu.Unlock()
		return r.fail(ActionNone, edit.Before, "",
			reject(RejectUnknownEntity, "%q is not on the grid.", edit.Before))
	}
	coord, _ := axis.coordOf(old.EntityID())
	axis.coord = coord

	if edit.After == "" {
		return r.removeHeaderEntity(ctx, edit, axis, old) // releases r.mu
	}
	return r.replaceHeaderEntity(ctx, edit, axis, old) // releases r.mu
}

// addHeaderEntity places a catalog entity on the grid. Purely local: a
// header with no cells has nothing to persist yet. Caller holds r.mu.
func (r *Reconciler) addHeaderEntity(edit Edit, axis axisView) Outcome {
	s := r.session

	e, ok := s.catalogs[axis.kind].GetByLabel(edit.After)
	if !ok {
		return r.fail(axis.addAction, edit.Before, "",
			reject(RejectUnknownEntity, "There is no %s with the name %q.", axis.kind, edit.After))
	}
	if _, already := s.visible[axis.kind].GetByID(e.EntityID()); already {
		return r.fail(axis.addAction, edit.Before, "",
			reject(RejectDuplicateEntity, "%s is already listed on the grid.", e.DisplayName()))
	}
	if axis.coord != axis.next() {
		return r.fail(axis.addAction, edit.Before, "",
			reject(RejectInvalidValue, "New %ss must be added in the next empty slot.", axis.kind))
	}

	s.visible[axis.kind].AddIfAbsent(e)
	axis.assign(e.EntityID())
	return committed(axis.addAction, e.DisplayName(), "")
}

// removeHeaderEntity deletes every cell on the axis remotely, then drops the
// entity and its coordinate. Cells already deleted when a later delete fails
// stay removed; the header itself survives a partial failure. Called with
// r.mu held; releases it.
func (r *Reconciler) removeHeaderEntity(ctx context.Context, edit Edit, axis axisView, old domain.Entity) Outcome {
	s := r.session
	editID := uuid.New().String()

	cells := axis.cellsIn(axis.coord)
	keys := make([]CellKey, 0, len(cells)+1)
	keys = append(keys, axis.headerKey)
	for _, cell := range cells {
		keys = append(keys, CellKey{Row: cell.Row, Col: cell.Col})
	}
	for _, key := range keys {
		if r.inflight[key] {
			defer r.mu.Unlock()
			return r.fail(axis.removeAction, edit.Before, editID,
				reject(RejectEditInFlight, "A cell on that %s still has a pending change.", axis.kind))
		}
	}
	r.markInFlight(keys, true)
	r.mu.Unlock()

	deleted := 0
	var remoteErr error
	for _, cell := range cells {
		if err := r.client.DeleteEntry(ctx, cell.ID); err != nil {
			remoteErr = err
			break
		}
		deleted++
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.markInFlight(keys, false)

	if remoteErr != nil {
		for _, cell := range cells[:deleted] {
			s.removeCell(cell)
		}
		s.recomputeTotals()
		return r.fail(axis.removeAction, edit.Before, editID,
			rejectRemote(remoteErr, hours.UserMessage(remoteErr)))
	}

	for _, cell := range cells {
		s.removeCell(cell)
	}
	s.visible[axis.kind].Remove(old)
	axis.release(old.EntityID())
	s.recomputeTotals()
	return committed(axis.removeAction, "", editID)
}

// replaceHeaderEntity rebinds the axis coordinate, and every cell on it, to
// a different catalog entity via one bulk reassignment call. Called with
// r.mu held; releases it.
func (r *Reconciler) replaceHeaderEntity(ctx context.Context, edit Edit, axis axisView, old domain.Entity) Outcome {
	s := r.session
	editID := uuid.New().String()

	next, ok := s.catalogs[axis.kind].GetByLabel(edit.After)
	if !ok {
		defer r.mu.Unlock()
		return r.fail(axis.replaceAction, edit.Before, editID,
			reject(RejectUnknownEntity, "There is no %s with the name %q.", axis.kind, edit.After))
	}
	if _, already := s.visible[axis.kind].GetByID(next.EntityID()); already {
		defer r.mu.Unlock()
		return r.fail(axis.replaceAction, edit.Before, editID,
			reject(RejectDuplicateEntity, "%s is already listed on the grid.", next.DisplayName()))
	}

	keys := []CellKey{axis.headerKey}
	r.markInFlight(keys, true)
	r.mu.Unlock()

	err := r.client.ReassignOwner(ctx, hours.ReassignRequest{
		EditID:    editID,
		Kind:      string(axis.kind),
		FromID:    old.EntityID(),
		ToID:      next.EntityID(),
		WeekStart: s.WeekStartISO(),
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.markInFlight(keys, false)

	if err != nil {
		return r.fail(axis.replaceAction, edit.Before, editID,
			rejectRemote(err, hours.UserMessage(err)))
	}

	s.visible[axis.kind].Remove(old)
	s.visible[axis.kind].AddIfAbsent(next)
	axis.rebind(old.EntityID(), next.EntityID())
	for _, cell := range axis.cellsIn(axis.coord) {
		cell.Owners[axis.kind] = next.EntityID()
	}
	s.recomputeTotals()
	return committed(axis.replaceAction, next.DisplayName(), editID)
}

// ── tuple row edits (charged-hours variant) ──────────────────────────────────

// applyTupleRowEdit handles label cells of a grid whose row identity is an
// entity combination. Labels accumulate on a pending row until every kind is
// bound, at which point the row identity is registered. Clearing any label
// of an assigned row removes the whole row.
func (r *Reconciler) applyTupleRowEdit(ctx context.Context, edit Edit) Outcome {
	s := r.session
	kind := s.schema.RowKinds[edit.Col]
	headerKey := CellKey{Row: edit.Row, Col: 0}

	r.mu.Lock()

	if r.inflight[headerKey] {
		defer r.mu.Unlock()
		return r.fail(ActionNone, edit.Before, "",
			reject(RejectEditInFlight, "That row still has a pending change."))
	}

	if _, assigned := s.RowOwners(edit.Row); assigned {
		if edit.After == "" {
			return r.removeTupleRow(ctx, edit) // releases r.mu
		}
		defer r.mu.Unlock()
		return r.fail(ActionReplaceRow, edit.Before, "",
			reject(RejectInvalidValue, "Clear the row and re-add it to change its %s.", kind))
	}
	defer r.mu.Unlock()

	pending, exists := s.pendingRows[edit.Row]

	if edit.After == "" {
		// Unbinding a label from a pending row.
		if exists {
			delete(pending, kind)
			if len(pending) == 0 {
				delete(s.pendingRows, edit.Row)
			}
		}
		return committed(ActionNone, "", "")
	}

	e, ok := s.catalogs[kind].GetByLabel(edit.After)
	if !ok {
		return r.fail(ActionAddRow, edit.Before, "",
			reject(RejectUnknownEntity, "There is no %s with the name %q.", kind, edit.After))
	}

	if !exists {
		if edit.Row != s.NextRow() {
			return r.fail(ActionAddRow, edit.Before, "",
				reject(RejectInvalidValue, "New rows must be added in the next empty row."))
		}
		pending = make(map[domain.EntityKind]string, len(s.schema.RowKinds))
		s.pendingRows[edit.Row] = pending
	}
	pending[kind] = e.EntityID()

	if len(pending) < len(s.schema.RowKinds) {
		return committed(ActionAddRow, e.DisplayName(), "")
	}

	// Identity complete: register the tuple row.
	ids := make([]string, len(s.schema.RowKinds))
	for i, k := range s.schema.RowKinds {
		ids[i] = pending[k]
	}
	if _, dup := s.rowTuples.Lookup(ids...); dup {
		delete(pending, kind)
		return r.fail(ActionAddRow, edit.Before, "",
			reject(RejectDuplicateEntity, "That combination is already listed on the grid."))
	}

	s.rowTuples.AssignAt(edit.Row, ids...)
	for _, k := range s.schema.RowKinds {
		if member, found := s.catalogs[k].GetByID(pending[k]); found {
			s.visible[k].AddIfAbsent(member)
		}
	}
	delete(s.pendingRows, edit.Row)
	return committed(ActionAddRow, e.DisplayName(), "")
}

// removeTupleRow cascades deletion of an assigned tuple row. Tuple members
// shared with other rows stay visible. Called with r.mu held; releases it.
func (r *Reconciler) removeTupleRow(ctx context.Context, edit Edit) Outcome {
	s := r.session
	editID := uuid.New().String()

	cells := s.cellsInRow(edit.Row)
	keys := make([]CellKey, 0, len(cells)+1)
	keys = append(keys, CellKey{Row: edit.Row, Col: 0})
	for _, cell := range cells {
		keys = append(keys, CellKey{Row: cell.Row, Col: cell.Col})
	}
	for _, key := range keys {
		if r.inflight[key] {
			defer r.mu.Unlock()
			return r.fail(ActionRemoveRow, edit.Before, editID,
				reject(RejectEditInFlight, "A cell on that row still has a pending change."))
		}
	}
	r.markInFlight(keys, true)
	r.mu.Unlock()

	deleted := 0
	var remoteErr error
	for _, cell := range cells {
		if err := r.client.DeleteEntry(ctx, cell.ID); err != nil {
			remoteErr = err
			break
		}
		deleted++
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.markInFlight(keys, false)

	if remoteErr != nil {
		for _, cell := range cells[:deleted] {
			s.removeCell(cell)
		}
		s.recomputeTotals()
		return r.fail(ActionRemoveRow, edit.Before, editID,
			rejectRemote(remoteErr, hours.UserMessage(remoteErr)))
	}

	for _, cell := range cells {
		s.removeCell(cell)
	}
	ids, _ := s.rowTuples.IDsAt(edit.Row)
	s.rowTuples.Release(edit.Row)
	for i, k := range s.schema.RowKinds {
		if len(s.rowTuples.CoordinatesOf(ids[i])) == 0 {
			if member, found := s.visible[k].GetByID(ids[i]); found {
				s.visible[k].Remove(member)
			}
		}
	}
	s.recomputeTotals()
	return committed(ActionRemoveRow, "", editID)
}

// ── data cell edits ──────────────────────────────────────────────────────────

func (r *Reconciler) applyCellEdit(ctx context.Context, edit Edit) Outcome {
	s := r.session
	key := CellKey{Row: edit.Row, Col: edit.Col}

	value, err := domain.ParseHours(edit.After)
	if err != nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.fail(ActionNone, edit.Before, "",
			reject(RejectInvalidValue, "Hours must be non-negative numbers."))
	}

	r.mu.Lock()

	if r.inflight[key] {
		defer r.mu.Unlock()
		return r.fail(ActionNone, edit.Before, "",
			reject(RejectEditInFlight, "That cell still has a pending change."))
	}

	cell, exists := s.Cell(edit.Row, edit.Col)

	// Zero normalizes to empty: clear the cell.
	if value == 0 {
		if !exists {
			defer r.mu.Unlock()
			return noop("")
		}
		return r.deleteCell(ctx, edit, key, cell) // releases r.mu
	}

	if exists {
		if domain.HoursEqual(cell.Hours, value) {
			defer r.mu.Unlock()
			return noop(domain.FormatHours(cell.Hours))
		}
		return r.updateCell(ctx, edit, key, cell, value) // releases r.mu
	}
	return r.createCell(ctx, edit, key, value) // releases r.mu
}

// deleteCell issues the remote delete and drops the local cell on success.
// Called with r.mu held; releases it.
func (r *Reconciler) deleteCell(ctx context.Context, edit Edit, key CellKey, cell *domain.TimeCell) Outcome {
	s := r.session
	editID := uuid.New().String()

	r.markInFlight([]CellKey{key}, true)
	r.mu.Unlock()

	err := r.client.DeleteEntry(ctx, cell.ID)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.markInFlight([]CellKey{key}, false)

	if err != nil {
		return r.fail(ActionDeleteCell, edit.Before, editID,
			rejectRemote(err, hours.UserMessage(err)))
	}

	s.removeCell(cell)
	s.recomputeTotals()
	return committed(ActionDeleteCell, "", editID)
}

// updateCell issues the remote update carrying the cell's id and new value.
// Called with r.mu held; releases it.
func (r *Reconciler) updateCell(ctx context.Context, edit Edit, key CellKey, cell *domain.TimeCell, value float64) Outcome {
	s := r.session
	editID := uuid.New().String()
	req := r.entryRequest(cell.ID, editID, cell.Owners, value, cell.Comment)

	r.markInFlight([]CellKey{key}, true)
	r.mu.Unlock()

	_, err := r.client.SaveEntry(ctx, req)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.markInFlight([]CellKey{key}, false)

	if err != nil {
		return r.fail(ActionUpdateCell, edit.Before, editID,
			rejectRemote(err, hours.UserMessage(err)))
	}

	cell.Hours = value
	cell.Published = true
	s.recomputeTotals()
	return committed(ActionUpdateCell, domain.FormatHours(value), editID)
}

// createCell issues the remote create for a cell that does not exist yet.
// Both the row identity and the column identity must already be resolved.
// Called with r.mu held; releases it.
func (r *Reconciler) createCell(ctx context.Context, edit Edit, key CellKey, value float64) Outcome {
	s := r.session
	editID := uuid.New().String()

	owners, rowOK := s.RowOwners(edit.Row)
	colEntity, colOK := s.ColEntity(edit.Col)
	if !rowOK || !colOK {
		defer r.mu.Unlock()
		return r.fail(ActionCreateCell, edit.Before, editID,
			reject(RejectIncompleteRowColumn,
				"Please fill in both the row and the column identities before entering hours."))
	}
	owners[s.schema.ColKind] = colEntity.EntityID()
	req := r.entryRequest("", editID, owners, value, "")

	r.markInFlight([]CellKey{key}, true)
	r.mu.Unlock()

	stored, err := r.client.SaveEntry(ctx, req)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.markInFlight([]CellKey{key}, false)

	if err != nil {
		return r.fail(ActionCreateCell, edit.Before, editID,
			rejectRemote(err, hours.UserMessage(err)))
	}

	s.putCell(&domain.TimeCell{
		ID:        stored.ID,
		Row:       edit.Row,
		Col:       edit.Col,
		Hours:     value,
		Published: true,
		Owners:    owners,
	})
	s.recomputeTotals()
	return committed(ActionCreateCell, domain.FormatHours(value), editID)
}

func (r *Reconciler) entryRequest(id, editID string, owners map[domain.EntityKind]string, value float64, comment string) hours.EntryRequest {
	return hours.EntryRequest{
		ID:        id,
		EditID:    editID,
		Project:   owners[domain.KindProject],
		User:      owners[domain.KindPerson],
		Activity:  owners[domain.KindActivity],
		Location:  owners[domain.KindLocation],
		Date:      owners[domain.KindPeriodDate],
		Hours:     value,
		Comment:   comment,
		WeekStart: r.session.WeekStartISO(),
	}
}

func (r *Reconciler) markInFlight(keys []CellKey, val bool) {
	for _, key := range keys {
		if val {
			r.inflight[key] = true
		} else {
			delete(r.inflight, key)
		}
	}
}
