package drivesave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/aionia-sheet/internal/archive"
	"github.com/KirkDiggler/aionia-sheet/internal/clients/drive"
	mockdrive "github.com/KirkDiggler/aionia-sheet/internal/clients/drive/mock"
	"github.com/KirkDiggler/aionia-sheet/internal/domain/character"
	sheeterr "github.com/KirkDiggler/aionia-sheet/internal/errors"
	"github.com/KirkDiggler/aionia-sheet/internal/services/drivesave"
	"github.com/KirkDiggler/aionia-sheet/internal/testutils"
)

type ManagerTestSuite struct {
	suite.Suite
	client  *drive.MemoryClient
	manager *drivesave.Manager
	ctx     context.Context
}

func (s *ManagerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.client = drive.NewMemoryClient()
	s.manager = drivesave.NewManager(&drivesave.Config{
		Client:       s.client,
		TimeProvider: testutils.FixedClock{T: time.Date(2025, 4, 5, 6, 7, 8, 0, time.UTC)},
	})
}

func TestManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (s *ManagerTestSuite) record(name string) *character.Record {
	return testutils.NamedRecord(name, "kiri")
}

func (s *ManagerTestSuite) TestFolderPathDefaults() {
	path, err := s.manager.FolderPath(s.ctx)
	s.Require().NoError(err)
	s.Equal(drivesave.DefaultFolderPath, path)

	files, err := s.manager.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(files)
}

func (s *ManagerTestSuite) TestSetFolderPath() {
	path, err := s.manager.SetFolderPath(s.ctx, " /TRPG//Aionia/ ")
	s.Require().NoError(err)
	s.Equal("TRPG/Aionia", path)

	got, err := s.manager.FolderPath(s.ctx)
	s.Require().NoError(err)
	s.Equal("TRPG/Aionia", got)

	// setting again overwrites the one sidecar file
	_, err = s.manager.SetFolderPath(s.ctx, "Other")
	s.Require().NoError(err)
	files, err := s.client.ListFiles(s.ctx, drive.RootID)
	s.Require().NoError(err)
	s.Len(files, 1)
	s.Equal(drivesave.ConfigFileName, files[0].Name)

	_, err = s.manager.SetFolderPath(s.ctx, "//")
	s.True(sheeterr.IsInvalidArgument(err))
}

func (s *ManagerTestSuite) TestSaveLoadListDelete() {
	png := archive.EncodeDataURL("image/png", []byte("img"))

	saved, err := s.manager.Save(s.ctx, "", s.record("Alma"), []string{png})
	s.Require().NoError(err)
	s.Equal("Alma_20250405060708.zip", saved.Name)

	files, err := s.manager.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(files, 1)
	s.Equal(saved.ID, files[0].ID)

	loaded, err := s.manager.Load(s.ctx, saved.ID)
	s.Require().NoError(err)
	s.Equal("Alma", loaded.Record.Character.Name)
	s.Equal([]string{png}, loaded.Images)

	// overwrite keeps the id and renames the file
	updated, err := s.manager.Save(s.ctx, saved.ID, s.record("Beth"), nil)
	s.Require().NoError(err)
	s.Equal(saved.ID, updated.ID)
	s.Equal("Beth_20250405060708.zip", updated.Name)

	s.Require().NoError(s.manager.Delete(s.ctx, saved.ID))
	files, err = s.manager.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(files)

	s.True(sheeterr.IsNotFound(s.manager.Delete(s.ctx, saved.ID)))
}

func (s *ManagerTestSuite) TestMissingChosenFolder() {
	_, err := s.manager.SetFolderPath(s.ctx, "Chosen/Place")
	s.Require().NoError(err)

	folder, err := s.client.FindFolder(s.ctx, "Chosen", drive.RootID)
	s.Require().NoError(err)
	s.Require().NoError(s.client.DeleteFile(s.ctx, folder.ID))

	_, err = s.manager.Save(s.ctx, "", s.record("Alma"), nil)
	s.ErrorIs(err, drivesave.ErrFolderNotFound)

	_, err = s.manager.List(s.ctx)
	s.ErrorIs(err, drivesave.ErrFolderNotFound)
}

func (s *ManagerTestSuite) TestLoadRejectsGarbage() {
	f, err := s.client.CreateFile(s.ctx, "junk.zip", drive.RootID, "application/zip", []byte("junk"))
	s.Require().NoError(err)

	_, err = s.manager.Load(s.ctx, f.ID)
	s.ErrorIs(err, archive.ErrUnreadableArchive)
}

func TestManager_FolderRemovedDuringSave(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mockdrive.NewMockClient(ctrl)
	manager := drivesave.NewManager(&drivesave.Config{Client: client})
	ctx := context.Background()

	client.EXPECT().FindFile(ctx, drivesave.ConfigFileName, drive.RootID).
		Return(nil, sheeterr.NotFound("no config"))
	client.EXPECT().FindFolder(ctx, "Aionia", drive.RootID).
		Return(&drive.File{ID: "f1", MimeType: drive.FolderMimeType}, nil)
	client.EXPECT().FindFolder(ctx, "Characters", "f1").
		Return(&drive.File{ID: "f2", MimeType: drive.FolderMimeType}, nil)
	client.EXPECT().CreateFile(ctx, gomock.Any(), "f2", "application/zip", gomock.Any()).
		Return(nil, sheeterr.NotFound("parent gone"))

	_, err := manager.Save(ctx, "", character.New(), nil)
	if err == nil || !sheeterr.IsNotFound(err) {
		t.Fatalf("expected folder not found, got %v", err)
	}
}
