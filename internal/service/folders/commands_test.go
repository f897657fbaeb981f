package folders

import (
	"errors"
	"strings"
	"testing"

	"binder/internal/config"
	"binder/internal/domain"
	"binder/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFolderID = "5f0c8a3e-2b7d-4c1a-9e6f-3d2b1a0c9e8f"

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand("assign_to_folder",
		[]byte(`{"kind":"view","token":"t1","folder_id":"`+testFolderID+`","record_ids":[3,1]}`))
	require.NoError(t, err)

	assign, ok := cmd.(AssignToFolder)
	require.True(t, ok)
	assert.Equal(t, models.KindView, assign.RecordKind())
	assert.Equal(t, "t1", assign.ActionToken())
	assert.Equal(t, testFolderID, assign.FolderID)
	assert.Equal(t, []models.RecordID{3, 1}, assign.RecordIDs)
	assert.Equal(t, ActionAssignToFolder, assign.Action())

	cmd, err = DecodeCommand("list_folders", nil)
	require.NoError(t, err)
	assert.IsType(t, ListFolders{}, cmd)
}

func TestDecodeCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		action  string
		payload string
	}{
		{"unknown action", "launch_rockets", `{}`},
		{"bad json", "create_folder", `{"kind":`},
		{"wrong type", "trash_record", `{"kind":"form","record_id":"seven"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCommand(tt.action, []byte(tt.payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
}

func TestCommandValidate(t *testing.T) {
	longName := strings.Repeat("n", config.MaxFolderNameLength+1)
	tooMany := make([]models.RecordID, config.MaxBulkAssign+1)
	for i := range tooMany {
		tooMany[i] = models.RecordID(i + 1)
	}

	tests := []struct {
		name    string
		cmd     Command
		wantErr bool
	}{
		{"create ok", CreateFolder{Envelope: env(models.KindForm), Name: "Invoices"}, false},
		{"create missing kind", CreateFolder{Name: "Invoices"}, true},
		{"create unknown kind", CreateFolder{Envelope: env("page"), Name: "Invoices"}, true},
		{"create blank name", CreateFolder{Envelope: env(models.KindForm), Name: "  "}, true},
		{"create long name", CreateFolder{Envelope: env(models.KindForm), Name: longName}, true},
		{"rename bad id", RenameFolder{Envelope: env(models.KindForm), FolderID: "12", Name: "x"}, true},
		{"assign ok", AssignToFolder{Envelope: env(models.KindForm), FolderID: testFolderID, RecordIDs: []models.RecordID{1, 2}}, false},
		{"assign empty", AssignToFolder{Envelope: env(models.KindForm), FolderID: testFolderID}, true},
		{"assign zero id", AssignToFolder{Envelope: env(models.KindForm), FolderID: testFolderID, RecordIDs: []models.RecordID{1, 0}}, true},
		{"assign negative id", AssignToFolder{Envelope: env(models.KindForm), FolderID: testFolderID, RecordIDs: []models.RecordID{-4}}, true},
		{"assign too many", AssignToFolder{Envelope: env(models.KindForm), FolderID: testFolderID, RecordIDs: tooMany}, true},
		{"unassign zero", UnassignFromFolder{Envelope: env(models.KindView)}, true},
		{"duplicate no target", DuplicateRecord{Envelope: env(models.KindForm), RecordID: 9}, false},
		{"duplicate bad target", DuplicateRecord{Envelope: env(models.KindForm), RecordID: 9, FolderID: "nope"}, true},
		{"trash ok", TrashRecord{Envelope: env(models.KindView), RecordID: 9}, false},
		{"order ok", SaveOrder{Envelope: env(models.KindView), FolderID: testFolderID, RecordIDs: []models.RecordID{2, 1}}, false},
		{"order on forms", SaveOrder{Envelope: env(models.KindForm), FolderID: testFolderID, RecordIDs: []models.RecordID{2, 1}}, true},
		{"order empty", SaveOrder{Envelope: env(models.KindView), FolderID: testFolderID}, true},
		{"purge ok", PurgeKind{Envelope: env(models.KindView)}, false},
		{"purge no kind", PurgeKind{}, true},
		{"contents ok", FolderContents{Envelope: env(models.KindForm), FolderID: testFolderID}, false},
		{"unassigned ok", UnassignedRecords{Envelope: env(models.KindForm)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
