package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/projectsync/projectsync/internal/application/dto"
	"github.com/projectsync/projectsync/internal/domain/models"
	apperrors "github.com/projectsync/projectsync/pkg/errors"
)

func newRepoServiceForTest() (*RepoService, *mockRepoRepository, *mockUserRepository, *mockClientRepository, *mockStorageService) {
	repoRepo := &mockRepoRepository{}
	userRepo := &mockUserRepository{}
	clientRepo := &mockClientRepository{}
	storage := &mockStorageService{}
	return NewRepoService(repoRepo, userRepo, clientRepo, storage), repoRepo, userRepo, clientRepo, storage
}

func testDate(s string) *dto.DateOnly {
	d, err := dto.ParseDateOnly(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestRepoServiceCreateValidation(t *testing.T) {
	svc, _, _, _, _ := newRepoServiceForTest()
	actor := &models.User{ID: uuid.New()}

	_, err := svc.Create(context.Background(), actor, &dto.CreateRepoRequest{}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsBadRequest(err))

	_, err = svc.Create(context.Background(), actor, &dto.CreateRepoRequest{Projectname: "p"}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestRepoServiceCreate(t *testing.T) {
	svc, repoRepo, _, _, _ := newRepoServiceForTest()
	actor := &models.User{ID: uuid.New(), Username: "ana"}

	repoRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Repo) bool {
		return r.Projectname == "delivery-platform" && r.OwnerID == actor.ID
	})).Return(nil)

	repo, err := svc.Create(context.Background(), actor, &dto.CreateRepoRequest{
		Projectname: "delivery-platform",
		FechaInicio: testDate("2024-03-01"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, repo.OwnerID)
	assert.Equal(t, "ana", repo.Owner.Username)
	repoRepo.AssertExpectations(t)
}

func TestRepoServiceCreateExplicitOwnerFallback(t *testing.T) {
	svc, repoRepo, userRepo, _, _ := newRepoServiceForTest()
	actor := &models.User{ID: uuid.New()}
	ghost := uuid.New()

	userRepo.On("FindByID", mock.Anything, ghost).
		Return(nil, apperrors.NotFound("user", apperrors.ErrNotFound))
	repoRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Repo) bool {
		return r.OwnerID == actor.ID
	})).Return(nil)

	repo, err := svc.Create(context.Background(), actor, &dto.CreateRepoRequest{
		Projectname: "p",
		FechaInicio: testDate("2024-03-01"),
		Owner:       &ghost,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, actor.ID, repo.OwnerID)
}

func TestRepoServiceCreateUnknownClient(t *testing.T) {
	svc, _, _, clientRepo, storage := newRepoServiceForTest()
	actor := &models.User{ID: uuid.New()}
	clientID := uuid.New()

	clientRepo.On("FindByID", mock.Anything, clientID).
		Return(nil, apperrors.NotFound("client", apperrors.ErrNotFound))

	_, err := svc.Create(context.Background(), actor, &dto.CreateRepoRequest{
		Projectname: "p",
		FechaInicio: testDate("2024-03-01"),
		Client:      &clientID,
	}, &Upload{FileName: "doc.pdf", Content: strings.NewReader("x")})
	require.Error(t, err)
	assert.True(t, apperrors.IsBadRequest(err))

	// Validation fails before anything touches storage.
	storage.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
}

func TestRepoServiceCreateCleansUpStoredFileOnDBFailure(t *testing.T) {
	svc, repoRepo, _, _, storage := newRepoServiceForTest()
	actor := &models.User{ID: uuid.New()}

	storage.On("Store", mock.Anything, "doc.pdf", mock.Anything).Return("abc-doc.pdf", nil)
	repoRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))
	storage.On("Delete", mock.Anything, "abc-doc.pdf").Return(nil)

	_, err := svc.Create(context.Background(), actor, &dto.CreateRepoRequest{
		Projectname: "p",
		FechaInicio: testDate("2024-03-01"),
	}, &Upload{FileName: "doc.pdf", Content: strings.NewReader("x")})
	require.Error(t, err)
	storage.AssertExpectations(t)
}

func TestRepoServiceGetAccess(t *testing.T) {
	svc, repoRepo, _, _, _ := newRepoServiceForTest()
	owner := &models.User{ID: uuid.New()}
	collab := &models.User{ID: uuid.New()}
	stranger := &models.User{ID: uuid.New()}

	repo := &models.Repo{
		ID:            uuid.New(),
		OwnerID:       owner.ID,
		Colaboradores: []models.User{{ID: collab.ID}},
	}
	repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)

	_, err := svc.Get(context.Background(), repo.ID, owner)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), repo.ID, collab)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), repo.ID, stranger)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestRepoServiceFindSkipsAccessCheck(t *testing.T) {
	svc, repoRepo, _, _, _ := newRepoServiceForTest()
	repo := &models.Repo{ID: uuid.New(), OwnerID: uuid.New()}
	repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)

	got, err := svc.Find(context.Background(), repo.ID)
	require.NoError(t, err)
	assert.Equal(t, repo.ID, got.ID)
}

func TestRepoServiceUpdatePartialSemantics(t *testing.T) {
	owner := &models.User{ID: uuid.New()}
	desc := "original"
	fin := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	newRepo := func() *models.Repo {
		return &models.Repo{
			ID:          uuid.New(),
			Projectname: "before",
			Description: &desc,
			FechaInicio: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			FechaFin:    &fin,
			OwnerID:     owner.ID,
		}
	}

	t.Run("absent fields stay untouched", func(t *testing.T) {
		svc, repoRepo, _, _, _ := newRepoServiceForTest()
		repo := newRepo()
		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)
		repoRepo.On("Update", mock.Anything, repo).Return(nil)

		got, err := svc.Update(context.Background(), repo.ID, owner, &dto.UpdateRepoRequest{}, nil)
		require.NoError(t, err)
		assert.Equal(t, "before", got.Projectname)
		assert.Equal(t, &desc, got.Description)
		assert.NotNil(t, got.FechaFin)
	})

	t.Run("explicit null clears nullable fields", func(t *testing.T) {
		svc, repoRepo, _, _, _ := newRepoServiceForTest()
		repo := newRepo()
		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)
		repoRepo.On("Update", mock.Anything, repo).Return(nil)

		got, err := svc.Update(context.Background(), repo.ID, owner, &dto.UpdateRepoRequest{
			Description: dto.Null[string](),
			FechaFin:    dto.Null[dto.DateOnly](),
		}, nil)
		require.NoError(t, err)
		assert.Nil(t, got.Description)
		assert.Nil(t, got.FechaFin)
	})

	t.Run("projectname cannot be cleared", func(t *testing.T) {
		svc, repoRepo, _, _, _ := newRepoServiceForTest()
		repo := newRepo()
		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)

		_, err := svc.Update(context.Background(), repo.ID, owner, &dto.UpdateRepoRequest{
			Projectname: dto.Null[string](),
		}, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsBadRequest(err))
	})

	t.Run("fechaInicio cannot be nulled", func(t *testing.T) {
		svc, repoRepo, _, _, _ := newRepoServiceForTest()
		repo := newRepo()
		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)

		_, err := svc.Update(context.Background(), repo.ID, owner, &dto.UpdateRepoRequest{
			FechaInicio: dto.Null[dto.DateOnly](),
		}, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsBadRequest(err))
	})

	t.Run("upload replaces stored file reference", func(t *testing.T) {
		svc, repoRepo, _, _, storage := newRepoServiceForTest()
		repo := newRepo()
		old := "old-stored.pdf"
		repo.FileName = &old
		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)
		repoRepo.On("Update", mock.Anything, repo).Return(nil)
		storage.On("Store", mock.Anything, "new.pdf", mock.Anything).Return("uuid-new.pdf", nil)

		got, err := svc.Update(context.Background(), repo.ID, owner, &dto.UpdateRepoRequest{},
			&Upload{FileName: "new.pdf", Content: strings.NewReader("x")})
		require.NoError(t, err)
		assert.Equal(t, "uuid-new.pdf", *got.FileName)

		// The replaced artifact is left in storage for the sweeper.
		storage.AssertNotCalled(t, "Delete", mock.Anything, old)
	})

	t.Run("collaborator cannot update", func(t *testing.T) {
		svc, repoRepo, _, _, _ := newRepoServiceForTest()
		repo := newRepo()
		collab := &models.User{ID: uuid.New()}
		repo.Colaboradores = []models.User{{ID: collab.ID}}
		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)

		_, err := svc.Update(context.Background(), repo.ID, collab, &dto.UpdateRepoRequest{}, nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
	})
}

func TestRepoServiceDelete(t *testing.T) {
	svc, repoRepo, _, _, _ := newRepoServiceForTest()
	owner := &models.User{ID: uuid.New()}
	repo := &models.Repo{ID: uuid.New(), OwnerID: owner.ID}

	repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)
	repoRepo.On("Delete", mock.Anything, repo.ID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), repo.ID, owner))
	repoRepo.AssertExpectations(t)
}

func TestRepoServiceDeleteForbidden(t *testing.T) {
	svc, repoRepo, _, _, _ := newRepoServiceForTest()
	repo := &models.Repo{ID: uuid.New(), OwnerID: uuid.New()}
	repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)

	err := svc.Delete(context.Background(), repo.ID, &models.User{ID: uuid.New()})
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	repoRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRepoServiceAddCollaborator(t *testing.T) {
	owner := &models.User{ID: uuid.New()}

	t.Run("success", func(t *testing.T) {
		svc, repoRepo, userRepo, _, _ := newRepoServiceForTest()
		repo := &models.Repo{ID: uuid.New(), OwnerID: owner.ID}
		target := &models.User{ID: uuid.New(), Username: "collab"}

		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)
		userRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)
		repoRepo.On("AddCollaborator", mock.Anything, repo, target).Return(nil)

		got, err := svc.AddCollaborator(context.Background(), repo.ID, target.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, "collab", got.Username)
	})

	t.Run("unknown target is a validation error", func(t *testing.T) {
		svc, repoRepo, userRepo, _, _ := newRepoServiceForTest()
		repo := &models.Repo{ID: uuid.New(), OwnerID: owner.ID}
		ghost := uuid.New()

		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)
		userRepo.On("FindByID", mock.Anything, ghost).
			Return(nil, apperrors.NotFound("user", apperrors.ErrNotFound))

		_, err := svc.AddCollaborator(context.Background(), repo.ID, ghost, owner)
		require.Error(t, err)
		assert.True(t, apperrors.IsBadRequest(err))
		assert.False(t, apperrors.IsNotFound(err))
	})

	t.Run("owner cannot be a collaborator", func(t *testing.T) {
		svc, repoRepo, userRepo, _, _ := newRepoServiceForTest()
		repo := &models.Repo{ID: uuid.New(), OwnerID: owner.ID}

		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)
		userRepo.On("FindByID", mock.Anything, owner.ID).Return(owner, nil)

		_, err := svc.AddCollaborator(context.Background(), repo.ID, owner.ID, owner)
		require.Error(t, err)
		assert.True(t, apperrors.IsBadRequest(err))
	})

	t.Run("duplicate membership rejected", func(t *testing.T) {
		svc, repoRepo, userRepo, _, _ := newRepoServiceForTest()
		target := &models.User{ID: uuid.New()}
		repo := &models.Repo{
			ID:            uuid.New(),
			OwnerID:       owner.ID,
			Colaboradores: []models.User{{ID: target.ID}},
		}

		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)
		userRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)

		_, err := svc.AddCollaborator(context.Background(), repo.ID, target.ID, owner)
		require.Error(t, err)
		assert.True(t, apperrors.IsBadRequest(err))
	})

	t.Run("only the owner manages collaborators", func(t *testing.T) {
		svc, repoRepo, _, _, _ := newRepoServiceForTest()
		collab := &models.User{ID: uuid.New()}
		repo := &models.Repo{
			ID:            uuid.New(),
			OwnerID:       owner.ID,
			Colaboradores: []models.User{{ID: collab.ID}},
		}

		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)

		_, err := svc.AddCollaborator(context.Background(), repo.ID, uuid.New(), collab)
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
	})
}

func TestRepoServiceRemoveCollaborator(t *testing.T) {
	owner := &models.User{ID: uuid.New()}

	t.Run("removes existing member", func(t *testing.T) {
		svc, repoRepo, userRepo, _, _ := newRepoServiceForTest()
		target := &models.User{ID: uuid.New()}
		repo := &models.Repo{
			ID:            uuid.New(),
			OwnerID:       owner.ID,
			Colaboradores: []models.User{{ID: target.ID}},
		}

		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)
		userRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)
		repoRepo.On("RemoveCollaborator", mock.Anything, repo, target).Return(nil)

		require.NoError(t, svc.RemoveCollaborator(context.Background(), repo.ID, target.ID, owner))
	})

	t.Run("non-member is a validation error", func(t *testing.T) {
		svc, repoRepo, userRepo, _, _ := newRepoServiceForTest()
		target := &models.User{ID: uuid.New()}
		repo := &models.Repo{ID: uuid.New(), OwnerID: owner.ID}

		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)
		userRepo.On("FindByID", mock.Anything, target.ID).Return(target, nil)

		err := svc.RemoveCollaborator(context.Background(), repo.ID, target.ID, owner)
		require.Error(t, err)
		assert.True(t, apperrors.IsBadRequest(err))
	})
}

func TestRepoServiceDownload(t *testing.T) {
	t.Run("no stored file", func(t *testing.T) {
		svc, repoRepo, _, _, _ := newRepoServiceForTest()
		repo := &models.Repo{ID: uuid.New(), OwnerID: uuid.New()}
		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)

		_, _, err := svc.Download(context.Background(), repo.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("streams stored artifact", func(t *testing.T) {
		svc, repoRepo, _, _, storage := newRepoServiceForTest()
		stored := "uuid-doc.pdf"
		repo := &models.Repo{ID: uuid.New(), OwnerID: uuid.New(), FileName: &stored}
		repoRepo.On("FindByID", mock.Anything, repo.ID).Return(repo, nil)
		storage.On("Open", mock.Anything, stored).
			Return(io.NopCloser(strings.NewReader("content")), nil)

		name, rc, err := svc.Download(context.Background(), repo.ID)
		require.NoError(t, err)
		defer rc.Close()

		assert.Equal(t, stored, name)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "content", string(data))
	})
}
