package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/finn/cloud-drive-backend/internal/domain"
	"github.com/finn/cloud-drive-backend/internal/repository/postgres"
	"github.com/finn/cloud-drive-backend/internal/service"
	"github.com/finn/cloud-drive-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFolderService(t *testing.T) (*service.FolderService, *testutil.TestDB) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	return service.NewFolderService(repos.Folder, repos.File), testDB
}

func TestFolderService_Create(t *testing.T) {
	svc, testDB := newFolderService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	parent := testutil.NewFolderBuilder(owner).Build(t, testDB.DB)
	foreign := testutil.NewFolderBuilder(stranger).Build(t, testDB.DB)
	missing := uuid.New()

	tests := []struct {
		name    string
		input   service.CreateFolderInput
		wantErr error
	}{
		{
			name:  "root folder",
			input: service.CreateFolderInput{OwnerID: owner.ID, Name: "Docs"},
		},
		{
			name:  "nested folder",
			input: service.CreateFolderInput{OwnerID: owner.ID, Name: "Sub", ParentID: &parent.ID},
		},
		{
			name:    "empty name",
			input:   service.CreateFolderInput{OwnerID: owner.ID, Name: "   "},
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "name too long",
			input:   service.CreateFolderInput{OwnerID: owner.ID, Name: strings.Repeat("x", 256)},
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "missing parent",
			input:   service.CreateFolderInput{OwnerID: owner.ID, Name: "Orphan", ParentID: &missing},
			wantErr: domain.ErrInvalidParent,
		},
		{
			name:    "foreign parent",
			input:   service.CreateFolderInput{OwnerID: owner.ID, Name: "Sneaky", ParentID: &foreign.ID},
			wantErr: domain.ErrInvalidParent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folder, err := svc.Create(ctx, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input.OwnerID, folder.OwnerID)
			assert.Equal(t, strings.TrimSpace(tt.input.Name), folder.Name)
		})
	}
}

func TestFolderService_Get_Ownership(t *testing.T) {
	svc, testDB := newFolderService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	stranger, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	folder := testutil.NewFolderBuilder(owner).Build(t, testDB.DB)

	got, err := svc.Get(ctx, folder.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, folder.ID, got.ID)

	// Another account holding the id still gets a Forbidden, not the folder.
	_, err = svc.Get(ctx, folder.ID, stranger.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Get(ctx, uuid.New(), owner.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFolderService_ResolvePath(t *testing.T) {
	svc, testDB := newFolderService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	docs := testutil.NewFolderBuilder(owner).WithName("Docs").Build(t, testDB.DB)
	sub := testutil.NewFolderBuilder(owner).WithName("Sub").WithParent(docs).Build(t, testDB.DB)
	deep := testutil.NewFolderBuilder(owner).WithName("Deep").WithParent(sub).Build(t, testDB.DB)

	t.Run("root folder has empty path", func(t *testing.T) {
		path, err := svc.ResolvePath(ctx, docs.ID, owner.ID)
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("single ancestor", func(t *testing.T) {
		path, err := svc.ResolvePath(ctx, sub.ID, owner.ID)
		require.NoError(t, err)
		require.Len(t, path, 1)
		assert.Equal(t, docs.ID, path[0].ID)
	})

	t.Run("chain is root-first and excludes the folder itself", func(t *testing.T) {
		path, err := svc.ResolvePath(ctx, deep.ID, owner.ID)
		require.NoError(t, err)
		require.Len(t, path, 2)
		assert.Equal(t, docs.ID, path[0].ID)
		assert.Equal(t, sub.ID, path[1].ID)
	})
}

func TestFolderService_Update_Move(t *testing.T) {
	svc, testDB := newFolderService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	docs := testutil.NewFolderBuilder(owner).WithName("Docs").Build(t, testDB.DB)
	sub := testutil.NewFolderBuilder(owner).WithName("Sub").WithParent(docs).Build(t, testDB.DB)

	t.Run("reparenting under own descendant is rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, docs.ID, owner.ID, service.UpdateFolderInput{
			Move:     true,
			ParentID: &sub.ID,
		})
		assert.ErrorIs(t, err, domain.ErrCycleDetected)

		// Tree unchanged: Docs is still a root folder and Sub still under it.
		path, err := svc.ResolvePath(ctx, sub.ID, owner.ID)
		require.NoError(t, err)
		require.Len(t, path, 1)
		assert.Equal(t, docs.ID, path[0].ID)
	})

	t.Run("reparenting under itself is rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, docs.ID, owner.ID, service.UpdateFolderInput{
			Move:     true,
			ParentID: &docs.ID,
		})
		assert.ErrorIs(t, err, domain.ErrCycleDetected)
	})

	t.Run("valid move to root", func(t *testing.T) {
		moved, err := svc.Update(ctx, sub.ID, owner.ID, service.UpdateFolderInput{Move: true})
		require.NoError(t, err)
		assert.Nil(t, moved.ParentID)
	})

	t.Run("rename", func(t *testing.T) {
		name := "Renamed"
		renamed, err := svc.Update(ctx, docs.ID, owner.ID, service.UpdateFolderInput{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", renamed.Name)
	})
}

func TestFolderService_Delete(t *testing.T) {
	svc, testDB := newFolderService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	t.Run("folder with child folder is rejected", func(t *testing.T) {
		parent := testutil.NewFolderBuilder(owner).Build(t, testDB.DB)
		testutil.NewFolderBuilder(owner).WithParent(parent).Build(t, testDB.DB)

		assert.ErrorIs(t, svc.Delete(ctx, parent.ID, owner.ID), domain.ErrFolderNotEmpty)
	})

	t.Run("folder with file is rejected", func(t *testing.T) {
		parent := testutil.NewFolderBuilder(owner).Build(t, testDB.DB)
		testutil.NewFileBuilder(owner).WithFolder(parent).Build(t, testDB.DB)

		assert.ErrorIs(t, svc.Delete(ctx, parent.ID, owner.ID), domain.ErrFolderNotEmpty)
	})

	t.Run("empty folder is deleted", func(t *testing.T) {
		empty := testutil.NewFolderBuilder(owner).Build(t, testDB.DB)

		require.NoError(t, svc.Delete(ctx, empty.ID, owner.ID))
		_, err := svc.Get(ctx, empty.ID, owner.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestFolderService_ListContents(t *testing.T) {
	svc, testDB := newFolderService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	docs := testutil.NewFolderBuilder(owner).WithName("Docs").Build(t, testDB.DB)
	sub := testutil.NewFolderBuilder(owner).WithName("Sub").WithParent(docs).Build(t, testDB.DB)
	testutil.NewFolderBuilder(owner).WithName("SubSub").WithParent(sub).Build(t, testDB.DB)
	file := testutil.NewFileBuilder(owner).WithName("a.txt").WithFolder(docs).Build(t, testDB.DB)

	contents, err := svc.ListContents(ctx, docs.ID, owner.ID)
	require.NoError(t, err)

	// Direct children only: Sub and a.txt, never SubSub.
	require.Len(t, contents.Folders, 1)
	assert.Equal(t, sub.ID, contents.Folders[0].ID)
	require.Len(t, contents.Files, 1)
	assert.Equal(t, file.ID, contents.Files[0].ID)
}

func TestFolderService_ListRoot(t *testing.T) {
	svc, testDB := newFolderService(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	root := testutil.NewFolderBuilder(owner).Build(t, testDB.DB)
	testutil.NewFolderBuilder(owner).WithParent(root).Build(t, testDB.DB)
	rootFile := testutil.NewFileBuilder(owner).Build(t, testDB.DB)

	contents, err := svc.ListRoot(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, contents.Folders, 1)
	assert.Equal(t, root.ID, contents.Folders[0].ID)
	require.Len(t, contents.Files, 1)
	assert.Equal(t, rootFile.ID, contents.Files[0].ID)
}
