package folders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"binder/internal/domain"
	"binder/internal/domain/models"
	"binder/internal/domain/repositories"
	"binder/internal/domain/services"
	"binder/internal/metrics"
)

// CopySuffix is appended to the title of a duplicated record
const CopySuffix = " (Copy)"

// FailureKind classifies a failed command
type FailureKind string

const (
	FailureUnauthorized FailureKind = "unauthorized"
	FailureInvalidInput FailureKind = "invalid_input"
	FailureNotFound     FailureKind = "not_found"
	FailureNotEmpty     FailureKind = "not_empty"
	FailureStore        FailureKind = "store_failure"
	FailureInternal     FailureKind = "internal"
)

// Failure describes why a command failed
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Result is the single outcome of every command
type Result struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message,omitempty"`
	Data     any                  `json:"data,omitempty"`
	Error    *Failure             `json:"error,omitempty"`
	Outcomes []models.ItemOutcome `json:"outcomes,omitempty"`

	status int
	cause  error
}

// StatusCode maps the result to an HTTP status
func (r *Result) StatusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// DuplicateResult is the payload of duplicate_record
type DuplicateResult struct {
	RecordID models.RecordID `json:"record_id"`
	Record   *models.Record  `json:"record"`
	FolderID string          `json:"folder_id,omitempty"`
}

// PurgeResult is the payload of purge_kind
type PurgeResult struct {
	Unassigned     int64 `json:"unassigned"`
	FoldersDeleted int64 `json:"folders_deleted"`
}

// Gateway is the only entry point callers use to reach the folder system.
// Every command is authenticated, token-checked when it mutates, authorized
// against the policy table and validated before it is delegated.
type Gateway struct {
	registry   services.FolderRegistry
	membership services.MembershipIndex
	ordering   services.OrderingStore
	records    repositories.RecordStore
	txManager  repositories.TransactionManager
	authorizer services.OperationAuthorizer
	tokens     services.ActionTokens
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// GatewayDeps lists the collaborators of a Gateway
type GatewayDeps struct {
	Registry   services.FolderRegistry
	Membership services.MembershipIndex
	Ordering   services.OrderingStore
	Records    repositories.RecordStore
	TxManager  repositories.TransactionManager
	Authorizer services.OperationAuthorizer
	Tokens     services.ActionTokens
	Metrics    metrics.Recorder // optional
	Logger     *slog.Logger
}

// NewGateway creates a new operation gateway
func NewGateway(deps GatewayDeps) *Gateway {
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Gateway{
		registry:   deps.Registry,
		membership: deps.Membership,
		ordering:   deps.Ordering,
		records:    deps.Records,
		txManager:  deps.TxManager,
		authorizer: deps.Authorizer,
		tokens:     deps.Tokens,
		metrics:    recorder,
		logger:     deps.Logger,
	}
}

// IssueToken mints an action token for a mutating action
func (g *Gateway) IssueToken(caller *models.Caller, action string) (string, time.Time, error) {
	if caller == nil || caller.UserID == "" {
		return "", time.Time{}, &domain.UnauthorizedError{Message: "authentication required"}
	}
	if !g.authorizer.Mutating(action) {
		return "", time.Time{}, &domain.ValidationError{Message: fmt.Sprintf("action %q does not take a token", action)}
	}
	return g.tokens.Mint(caller.UserID, action)
}

// ExecuteTrusted mints the action token itself, then executes. It serves
// in-process callers like the seeder and binderctl; HTTP never reaches it.
func (g *Gateway) ExecuteTrusted(ctx context.Context, caller *models.Caller, cmd Command) *Result {
	action := string(cmd.Action())
	if g.authorizer.Mutating(action) {
		token, _, err := g.IssueToken(caller, action)
		if err != nil {
			return Failed(err)
		}
		cmd = WithToken(cmd, token)
	}
	return g.Execute(ctx, caller, cmd)
}

// Execute runs one command and always returns a Result
func (g *Gateway) Execute(ctx context.Context, caller *models.Caller, cmd Command) *Result {
	start := time.Now()
	result := g.execute(ctx, caller, cmd)
	g.observe(string(cmd.Action()), cmd.RecordKind(), caller, result, time.Since(start))
	return result
}

// ExecutePayload runs the command named by action from a raw JSON payload.
// For mutating actions the token is checked before the payload is decoded.
func (g *Gateway) ExecutePayload(ctx context.Context, caller *models.Caller, action string, payload []byte) *Result {
	start := time.Now()

	// best effort; a malformed payload leaves the envelope empty
	var envelope Envelope
	_ = json.Unmarshal(payload, &envelope)

	result := g.executePayload(ctx, caller, action, envelope.Token, payload)
	g.observe(action, envelope.Kind, caller, result, time.Since(start))
	return result
}

func (g *Gateway) executePayload(ctx context.Context, caller *models.Caller, action, token string, payload []byte) *Result {
	if err := g.checkCaller(caller, action, token); err != nil {
		return g.fail(err, nil)
	}

	cmd, err := DecodeCommand(action, payload)
	if err != nil {
		return g.fail(err, nil)
	}
	return g.run(ctx, caller, cmd)
}

func (g *Gateway) observe(action string, kind models.Kind, caller *models.Caller, result *Result, elapsed time.Duration) {
	outcome := "ok"
	if !result.Success {
		outcome = string(result.Error.Kind)
	}
	g.metrics.ObserveOperation(action, string(kind), outcome, elapsed)

	attrs := []any{
		"action", action,
		"kind", kind,
		"outcome", outcome,
		"duration_ms", elapsed.Milliseconds(),
	}
	if caller != nil {
		attrs = append(attrs, "user_id", caller.UserID)
	}
	switch {
	case result.Success:
		g.logger.Info("command executed", attrs...)
	case result.Error.Kind == FailureInternal:
		g.logger.Error("command failed", append(attrs, "error", result.cause)...)
	default:
		g.logger.Warn("command rejected", append(attrs, "reason", result.Error.Message)...)
	}
}

func (g *Gateway) execute(ctx context.Context, caller *models.Caller, cmd Command) *Result {
	if err := g.checkCaller(caller, string(cmd.Action()), cmd.ActionToken()); err != nil {
		return g.fail(err, nil)
	}
	return g.run(ctx, caller, cmd)
}

// checkCaller requires an authenticated caller and, for mutating actions,
// spends the action token. It runs before any other validation.
func (g *Gateway) checkCaller(caller *models.Caller, action, token string) error {
	if caller == nil || caller.UserID == "" {
		return &domain.UnauthorizedError{Message: "authentication required"}
	}
	if g.authorizer.Mutating(action) {
		return g.tokens.Verify(token, caller.UserID, action)
	}
	return nil
}

func (g *Gateway) run(ctx context.Context, caller *models.Caller, cmd Command) *Result {
	if err := g.authorizer.Authorize(caller, string(cmd.Action()), cmd.RecordKind()); err != nil {
		return g.fail(err, nil)
	}

	if err := cmd.Validate(); err != nil {
		return g.fail(fmt.Errorf("%w: %v", domain.ErrValidation, err), nil)
	}

	return g.dispatch(ctx, cmd)
}

func (g *Gateway) dispatch(ctx context.Context, cmd Command) *Result {
	switch c := cmd.(type) {
	case CreateFolder:
		folder, err := g.registry.CreateFolder(ctx, c.Kind, c.Name)
		if err != nil {
			return g.fail(err, nil)
		}
		return ok(fmt.Sprintf("Folder %q created", folder.Name), folder)

	case RenameFolder:
		folder, err := g.registry.RenameFolder(ctx, c.Kind, c.FolderID, c.Name)
		if err != nil {
			return g.fail(err, nil)
		}
		return ok("Folder renamed", folder)

	case DeleteFolder:
		if err := g.registry.DeleteFolder(ctx, c.Kind, c.FolderID); err != nil {
			return g.fail(err, nil)
		}
		return ok("Folder deleted", nil)

	case AssignToFolder:
		outcomes, err := g.membership.AssignMany(ctx, c.Kind, c.RecordIDs, c.FolderID)
		if err != nil {
			return g.fail(err, outcomes)
		}
		res := ok(fmt.Sprintf("%d %s assigned", len(c.RecordIDs), c.Kind.Plural()), nil)
		res.Outcomes = outcomes
		return res

	case UnassignFromFolder:
		if err := g.membership.Unassign(ctx, c.Kind, c.RecordID); err != nil {
			return g.fail(err, nil)
		}
		return ok(fmt.Sprintf("%s %d removed from its folder", c.Kind, c.RecordID), nil)

	case DuplicateRecord:
		dup, err := g.duplicateRecord(ctx, c)
		if err != nil {
			return g.fail(err, nil)
		}
		return ok(fmt.Sprintf("%s %d duplicated", c.Kind, c.RecordID), dup)

	case TrashRecord:
		if err := g.trashRecord(ctx, c.Kind, c.RecordID); err != nil {
			return g.fail(err, nil)
		}
		return ok(fmt.Sprintf("%s %d moved to the trash", c.Kind, c.RecordID), nil)

	case SaveOrder:
		if err := g.ordering.SaveOrder(ctx, c.Kind, c.FolderID, c.RecordIDs); err != nil {
			return g.fail(err, nil)
		}
		return ok("Order saved", nil)

	case PurgeKind:
		purged, err := g.purgeKind(ctx, c.Kind)
		if err != nil {
			return g.fail(err, nil)
		}
		return ok(fmt.Sprintf("All %s folders removed", c.Kind), purged)

	case ListFolders:
		summaries, err := g.registry.ListFolderSummaries(ctx, c.Kind)
		if err != nil {
			return g.fail(err, nil)
		}
		return ok("", summaries)

	case GetFolder:
		folder, err := g.registry.GetFolder(ctx, c.Kind, c.FolderID)
		if err != nil {
			return g.fail(err, nil)
		}
		return ok("", folder)

	case FolderContents:
		contents, err := g.folderContents(ctx, c.Kind, c.FolderID)
		if err != nil {
			return g.fail(err, nil)
		}
		return ok("", contents)

	case UnassignedRecords:
		records, err := g.unassignedRecords(ctx, c.Kind)
		if err != nil {
			return g.fail(err, nil)
		}
		return ok("", records)

	default:
		return g.fail(&domain.ValidationError{Message: fmt.Sprintf("unsupported command %T", cmd)}, nil)
	}
}

// duplicateRecord checks the source and target first so a failed check
// never leaves a stray copy behind.
func (g *Gateway) duplicateRecord(ctx context.Context, c DuplicateRecord) (*DuplicateResult, error) {
	source, err := g.records.Get(ctx, c.Kind, c.RecordID)
	if err != nil {
		return nil, err
	}
	if source.Trashed() {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("%s %d is in the trash", c.Kind, c.RecordID)}
	}
	if c.FolderID != "" {
		if _, err := g.registry.GetFolder(ctx, c.Kind, c.FolderID); err != nil {
			return nil, err
		}
	}

	dup, err := g.records.Duplicate(ctx, c.Kind, c.RecordID, CopySuffix)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, &domain.StoreFailureError{Op: "duplicate", Err: err}
	}

	result := &DuplicateResult{RecordID: dup.ID, Record: dup}
	if c.FolderID != "" {
		if err := g.membership.Assign(ctx, c.Kind, dup.ID, c.FolderID); err != nil {
			return nil, fmt.Errorf("%s %d was copied to %d but not filed: %w", c.Kind, c.RecordID, dup.ID, err)
		}
		result.FolderID = c.FolderID
	}
	return result, nil
}

// trashRecord clears the membership before trashing. If the trash fails
// the record gets its previous status and folder back.
func (g *Gateway) trashRecord(ctx context.Context, kind models.Kind, id models.RecordID) error {
	record, err := g.records.Get(ctx, kind, id)
	if err != nil {
		return err
	}

	previous, err := g.membership.FolderOf(ctx, kind, id)
	if err != nil {
		return err
	}

	if err := g.membership.ForgetRecord(ctx, kind, id); err != nil {
		return err
	}

	if record.Trashed() {
		return nil
	}

	if err := g.records.Trash(ctx, kind, id); err != nil {
		g.rollbackTrash(ctx, record, previous)
		return &domain.StoreFailureError{Op: "trash", Err: err}
	}
	return nil
}

func (g *Gateway) rollbackTrash(ctx context.Context, record *models.Record, previous *string) {
	if err := g.records.Restore(ctx, record.Kind, record.ID, record.Status); err != nil {
		g.logger.Error("restore after failed trash",
			"kind", record.Kind,
			"record_id", record.ID,
			"error", err,
		)
		return
	}
	if previous == nil {
		return
	}
	if err := g.membership.Assign(ctx, record.Kind, record.ID, *previous); err != nil {
		g.logger.Error("reassign after failed trash",
			"kind", record.Kind,
			"record_id", record.ID,
			"folder_id", *previous,
			"error", err,
		)
	}
}

// purgeKind removes every assignment and then every folder of a kind
func (g *Gateway) purgeKind(ctx context.Context, kind models.Kind) (*PurgeResult, error) {
	result := &PurgeResult{}
	err := g.txManager.ExecTx(ctx, func(ctx context.Context) error {
		n, err := g.membership.UnassignAll(ctx, kind)
		if err != nil {
			return err
		}
		result.Unassigned = n

		n, err = g.registry.PurgeFolders(ctx, kind)
		if err != nil {
			return err
		}
		result.FoldersDeleted = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// folderContents returns the live members of a folder. View folders come
// back in their saved order.
func (g *Gateway) folderContents(ctx context.Context, kind models.Kind, folderID string) (*models.FolderContents, error) {
	folder, err := g.registry.GetFolder(ctx, kind, folderID)
	if err != nil {
		return nil, err
	}

	ids, err := g.membership.MembersOf(ctx, kind, folderID)
	if err != nil {
		return nil, err
	}
	records, err := g.records.ListByIDs(ctx, kind, ids)
	if err != nil {
		return nil, err
	}

	if kind.Ordered() {
		order, err := g.ordering.GetOrder(ctx, folderID)
		if err != nil {
			return nil, err
		}
		records = SortByOrder(records, order)
	}

	return &models.FolderContents{Folder: *folder, Records: records}, nil
}

// unassignedRecords lists live records of a kind that sit in no folder
func (g *Gateway) unassignedRecords(ctx context.Context, kind models.Kind) ([]models.Record, error) {
	records, err := g.records.ListActive(ctx, kind)
	if err != nil {
		return nil, err
	}
	assigned, err := g.membership.Assigned(ctx, kind)
	if err != nil {
		return nil, err
	}

	filed := make(map[models.RecordID]struct{}, len(assigned))
	for _, id := range assigned {
		filed[id] = struct{}{}
	}

	unassigned := make([]models.Record, 0, len(records))
	for _, r := range records {
		if _, ok := filed[r.ID]; !ok {
			unassigned = append(unassigned, r)
		}
	}
	return unassigned, nil
}

func ok(message string, data any) *Result {
	return &Result{Success: true, Message: message, Data: data}
}

func (g *Gateway) fail(err error, outcomes []models.ItemOutcome) *Result {
	res := Failed(err)
	res.Outcomes = outcomes
	return res
}

// Failed converts an error into a failed Result. Internal error details
// are kept for the log and hidden from the caller.
func Failed(err error) *Result {
	kind, status := Classify(err)
	message := err.Error()
	if kind == FailureInternal {
		message = "internal error"
	}
	return &Result{
		Error:  &Failure{Kind: kind, Message: message},
		status: status,
		cause:  err,
	}
}

// Classify maps an error to its failure kind and HTTP status
func Classify(err error) (FailureKind, int) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return FailureUnauthorized, http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized):
		return FailureUnauthorized, http.StatusUnauthorized
	case errors.Is(err, domain.ErrStoreFailure):
		return FailureStore, http.StatusBadGateway
	case errors.Is(err, domain.ErrValidation):
		return FailureInvalidInput, http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return FailureNotFound, http.StatusNotFound
	case errors.Is(err, domain.ErrNotEmpty):
		return FailureNotEmpty, http.StatusConflict
	default:
		return FailureInternal, http.StatusInternalServerError
	}
}
