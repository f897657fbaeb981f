package folders

import (
	"encoding/json"
	"fmt"
	"strings"

	"binder/internal/config"
	"binder/internal/domain"
	"binder/internal/domain/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Action names the operations the gateway accepts
type Action string

const (
	ActionCreateFolder      Action = "create_folder"
	ActionRenameFolder      Action = "rename_folder"
	ActionDeleteFolder      Action = "delete_folder"
	ActionAssignToFolder    Action = "assign_to_folder"
	ActionUnassign          Action = "unassign_from_folder"
	ActionDuplicateRecord   Action = "duplicate_record"
	ActionTrashRecord       Action = "trash_record"
	ActionSaveOrder         Action = "save_order"
	ActionPurgeKind         Action = "purge_kind"
	ActionListFolders       Action = "list_folders"
	ActionGetFolder         Action = "get_folder"
	ActionFolderContents    Action = "folder_contents"
	ActionUnassignedRecords Action = "unassigned_records"
)

// Command is one gateway request. The set of commands is closed: only the
// types in this file implement it.
type Command interface {
	Action() Action
	RecordKind() models.Kind
	ActionToken() string
	Validate() error
	sealed()
}

// Envelope carries the fields every command has
type Envelope struct {
	Kind  models.Kind `json:"kind"`
	Token string      `json:"token,omitempty"`
}

func (e Envelope) RecordKind() models.Kind { return e.Kind }
func (e Envelope) ActionToken() string     { return e.Token }
func (Envelope) sealed()                   {}

func (e Envelope) validateKind() error {
	return validation.Validate(e.Kind,
		validation.Required.Error("kind is required"),
		validation.In(models.KindForm, models.KindView).Error("kind must be form or view"),
	)
}

type (
	CreateFolder struct {
		Envelope
		Name string `json:"name"`
	}

	RenameFolder struct {
		Envelope
		FolderID string `json:"folder_id"`
		Name     string `json:"name"`
	}

	DeleteFolder struct {
		Envelope
		FolderID string `json:"folder_id"`
	}

	AssignToFolder struct {
		Envelope
		FolderID  string            `json:"folder_id"`
		RecordIDs []models.RecordID `json:"record_ids"`
	}

	UnassignFromFolder struct {
		Envelope
		RecordID models.RecordID `json:"record_id"`
	}

	DuplicateRecord struct {
		Envelope
		RecordID models.RecordID `json:"record_id"`
		FolderID string          `json:"folder_id,omitempty"` // optional target folder
	}

	TrashRecord struct {
		Envelope
		RecordID models.RecordID `json:"record_id"`
	}

	SaveOrder struct {
		Envelope
		FolderID  string            `json:"folder_id"`
		RecordIDs []models.RecordID `json:"record_ids"`
	}

	PurgeKind struct {
		Envelope
	}

	ListFolders struct {
		Envelope
	}

	GetFolder struct {
		Envelope
		FolderID string `json:"folder_id"`
	}

	FolderContents struct {
		Envelope
		FolderID string `json:"folder_id"`
	}

	UnassignedRecords struct {
		Envelope
	}
)

func (CreateFolder) Action() Action       { return ActionCreateFolder }
func (RenameFolder) Action() Action       { return ActionRenameFolder }
func (DeleteFolder) Action() Action       { return ActionDeleteFolder }
func (AssignToFolder) Action() Action     { return ActionAssignToFolder }
func (UnassignFromFolder) Action() Action { return ActionUnassign }
func (DuplicateRecord) Action() Action    { return ActionDuplicateRecord }
func (TrashRecord) Action() Action        { return ActionTrashRecord }
func (SaveOrder) Action() Action          { return ActionSaveOrder }
func (PurgeKind) Action() Action          { return ActionPurgeKind }
func (ListFolders) Action() Action        { return ActionListFolders }
func (GetFolder) Action() Action          { return ActionGetFolder }
func (FolderContents) Action() Action     { return ActionFolderContents }
func (UnassignedRecords) Action() Action  { return ActionUnassignedRecords }

var (
	folderIDRules = []validation.Rule{validation.Required.Error("folder_id is required"), is.UUID}
	recordIDRules = []validation.Rule{validation.Required.Error("record_id is required"), validation.Min(int64(1))}
	nameRules     = []validation.Rule{
		validation.By(notBlank("name")),
		validation.RuneLength(1, config.MaxFolderNameLength),
	}
)

func notBlank(field string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("validation_blank", field+" is required")
		}
		return nil
	}
}

func (c CreateFolder) Validate() error {
	if err := c.validateKind(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, nameRules...),
	)
}

func (c RenameFolder) Validate() error {
	if err := c.validateKind(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.FolderID, folderIDRules...),
		validation.Field(&c.Name, nameRules...),
	)
}

func (c DeleteFolder) Validate() error {
	if err := c.validateKind(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.FolderID, folderIDRules...),
	)
}

func (c AssignToFolder) Validate() error {
	if err := c.validateKind(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.FolderID, folderIDRules...),
		validation.Field(&c.RecordIDs,
			validation.Required.Error("record_ids must list at least one record"),
			validation.Length(1, config.MaxBulkAssign),
			validation.Each(validation.Required, validation.Min(int64(1))),
		),
	)
}

func (c UnassignFromFolder) Validate() error {
	if err := c.validateKind(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.RecordID, recordIDRules...),
	)
}

func (c DuplicateRecord) Validate() error {
	if err := c.validateKind(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.RecordID, recordIDRules...),
		validation.Field(&c.FolderID, is.UUID),
	)
}

func (c TrashRecord) Validate() error {
	if err := c.validateKind(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.RecordID, recordIDRules...),
	)
}

func (c SaveOrder) Validate() error {
	if err := c.validateKind(); err != nil {
		return err
	}
	if !c.Kind.Ordered() {
		return validation.NewError("validation_unordered", fmt.Sprintf("%s folders have no saved order", c.Kind))
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.FolderID, folderIDRules...),
		validation.Field(&c.RecordIDs,
			validation.Required.Error("record_ids must list at least one record"),
			validation.Length(1, config.MaxOrderLength),
			validation.Each(validation.Required, validation.Min(int64(1))),
		),
	)
}

func (c PurgeKind) Validate() error         { return c.validateKind() }
func (c ListFolders) Validate() error       { return c.validateKind() }
func (c UnassignedRecords) Validate() error { return c.validateKind() }

func (c GetFolder) Validate() error {
	if err := c.validateKind(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.FolderID, folderIDRules...),
	)
}

func (c FolderContents) Validate() error {
	if err := c.validateKind(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.FolderID, folderIDRules...),
	)
}

// WithToken returns a copy of cmd carrying token. Read commands come back
// unchanged.
func WithToken(cmd Command, token string) Command {
	switch c := cmd.(type) {
	case CreateFolder:
		c.Token = token
		return c
	case RenameFolder:
		c.Token = token
		return c
	case DeleteFolder:
		c.Token = token
		return c
	case AssignToFolder:
		c.Token = token
		return c
	case UnassignFromFolder:
		c.Token = token
		return c
	case DuplicateRecord:
		c.Token = token
		return c
	case TrashRecord:
		c.Token = token
		return c
	case SaveOrder:
		c.Token = token
		return c
	case PurgeKind:
		c.Token = token
		return c
	}
	return cmd
}

// DecodeCommand builds the command named by action from a JSON payload.
// Unknown actions and malformed payloads are validation errors.
func DecodeCommand(action string, payload []byte) (Command, error) {
	var (
		cmd Command
		err error
	)
	switch Action(action) {
	case ActionCreateFolder:
		cmd, err = decode[CreateFolder](payload)
	case ActionRenameFolder:
		cmd, err = decode[RenameFolder](payload)
	case ActionDeleteFolder:
		cmd, err = decode[DeleteFolder](payload)
	case ActionAssignToFolder:
		cmd, err = decode[AssignToFolder](payload)
	case ActionUnassign:
		cmd, err = decode[UnassignFromFolder](payload)
	case ActionDuplicateRecord:
		cmd, err = decode[DuplicateRecord](payload)
	case ActionTrashRecord:
		cmd, err = decode[TrashRecord](payload)
	case ActionSaveOrder:
		cmd, err = decode[SaveOrder](payload)
	case ActionPurgeKind:
		cmd, err = decode[PurgeKind](payload)
	case ActionListFolders:
		cmd, err = decode[ListFolders](payload)
	case ActionGetFolder:
		cmd, err = decode[GetFolder](payload)
	case ActionFolderContents:
		cmd, err = decode[FolderContents](payload)
	case ActionUnassignedRecords:
		cmd, err = decode[UnassignedRecords](payload)
	default:
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unknown action %q", action)}
	}

	if err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("invalid %s payload: %v", action, err)}
	}
	return cmd, nil
}

func decode[T Command](payload []byte) (Command, error) {
	var cmd T
	if len(payload) == 0 {
		return cmd, nil
	}
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}
