package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/projectsync/projectsync/internal/application/dto"
	"github.com/projectsync/projectsync/internal/application/service"
	"github.com/projectsync/projectsync/internal/transport/http/middleware"
	apperrors "github.com/projectsync/projectsync/pkg/errors"
	"github.com/projectsync/projectsync/pkg/logger"
)

// RepoHandler handles repository-related HTTP requests
type RepoHandler struct {
	repoService *service.RepoService
}

// NewRepoHandler creates a new RepoHandler instance
func NewRepoHandler(repoService *service.RepoService) *RepoHandler {
	return &RepoHandler{
		repoService: repoService,
	}
}

// CreateRepo handles POST /api/newrepo. Accepts JSON or multipart form
// data; the multipart path may carry a file under the "file" key.
func (h *RepoHandler) CreateRepo(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication required",
		})
		return
	}

	var req dto.CreateRepoRequest
	var upload *service.Upload

	if isMultipart(c) {
		parsed, file, err := h.createRequestFromForm(c)
		if err != nil {
			handleError(c, err)
			return
		}
		req = *parsed
		upload = file
		if upload != nil {
			if closer, ok := upload.Content.(io.Closer); ok {
				defer closer.Close()
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "bad_request",
				"message": "Invalid request body",
				"details": err.Error(),
			})
			return
		}
	}

	repo, err := h.repoService.Create(c.Request.Context(), user, &req, upload)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateRepoResponse{
		ID:      repo.ID,
		Message: "Repository created successfully",
	})
}

// ListRepos handles GET /api/repos, listing the caller's owned records
func (h *RepoHandler) ListRepos(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication required",
		})
		return
	}

	repos, err := h.repoService.ListOwned(c.Request.Context(), user)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repos": dto.RepoSummariesFromModels(repos),
		"total": len(repos),
	})
}

// ListAllRepos handles GET /api/repos/all. This endpoint is open.
func (h *RepoHandler) ListAllRepos(c *gin.Context) {
	repos, err := h.repoService.ListAll(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repos": dto.RepoSummariesFromModels(repos),
		"total": len(repos),
	})
}

// ListCollaborations handles GET /api/repos/colaboraciones, listing the
// records where the caller is a collaborator
func (h *RepoHandler) ListCollaborations(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication required",
		})
		return
	}

	repos, err := h.repoService.ListCollaborations(c.Request.Context(), user)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repos": dto.RepoSummariesFromModels(repos),
		"total": len(repos),
	})
}

// GetRepo handles GET /api/repo/:id, requiring read access
func (h *RepoHandler) GetRepo(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}

	user := middleware.GetUserFromContext(c)
	repo, err := h.repoService.Get(c.Request.Context(), id, user)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RepoDetailFromModel(repo))
}

// FindRepo handles GET /api/repos/find/:id. This endpoint is open and
// performs no access check.
func (h *RepoHandler) FindRepo(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}

	repo, err := h.repoService.Find(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RepoDetailFromModel(repo))
}

// UpdateRepo handles PUT and PATCH /api/updaterepo/:id. Accepts JSON or multipart form
// data; only the fields present in the payload change.
func (h *RepoHandler) UpdateRepo(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}

	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication required",
		})
		return
	}

	var req dto.UpdateRepoRequest
	var upload *service.Upload

	if isMultipart(c) {
		parsed, file, err := h.updateRequestFromForm(c)
		if err != nil {
			handleError(c, err)
			return
		}
		req = *parsed
		upload = file
		if upload != nil {
			if closer, ok := upload.Content.(io.Closer); ok {
				defer closer.Close()
			}
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "bad_request",
				"message": "Invalid request body",
				"details": err.Error(),
			})
			return
		}
	}

	repo, err := h.repoService.Update(c.Request.Context(), id, user, &req, upload)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RepoDetailFromModel(repo))
}

// DeleteRepo handles DELETE /api/deleterepo/:id
func (h *RepoHandler) DeleteRepo(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}

	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Authentication required",
		})
		return
	}

	if err := h.repoService.Delete(c.Request.Context(), id, user); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Repository deleted successfully",
	})
}

// AddCollaborator handles POST /api/repos/:id/colaboradores
func (h *RepoHandler) AddCollaborator(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}

	user := middleware.GetUserFromContext(c)

	var req dto.AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	added, err := h.repoService.AddCollaborator(c.Request.Context(), id, req.UserID, user)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Collaborator added successfully",
		"colaborador": dto.CollaboratorInfo{ID: added.ID, Username: added.Username},
	})
}

// RemoveCollaborator handles DELETE /api/repos/:id/colaboradores/:userId
func (h *RepoHandler) RemoveCollaborator(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}
	userID, ok := h.parseID(c, c.Param("userId"))
	if !ok {
		return
	}

	user := middleware.GetUserFromContext(c)

	if err := h.repoService.RemoveCollaborator(c.Request.Context(), id, userID, user); err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Collaborator removed successfully",
	})
}

// ListCollaborators handles GET /api/repos/:id/colaboradores
func (h *RepoHandler) ListCollaborators(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}

	user := middleware.GetUserFromContext(c)

	collaborators, err := h.repoService.ListCollaborators(c.Request.Context(), id, user)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CollaboratorListResponse{
		Colaboradores: dto.CollaboratorsFromModels(collaborators),
		Total:         len(collaborators),
	})
}

// DownloadFile handles GET /api/repo/:id/download. This endpoint is
// open; the stored artifact streams back under its stored name.
func (h *RepoHandler) DownloadFile(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}

	name, content, err := h.repoService.Download(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	defer content.Close()

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, content); err != nil {
		// Headers are gone; the truncated stream can only be logged.
		logger.Get().Warn("artifact download stream interrupted",
			logger.RepoID(id.String()),
			logger.FileName(name),
			logger.Error(err),
		)
	}
}

// parseID parses a path parameter as a UUID, responding with 400 on
// malformed input
func (h *RepoHandler) parseID(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "bad_request",
			"message": "Invalid identifier",
		})
		return uuid.Nil, false
	}
	return id, true
}

// isMultipart reports whether the request carries a multipart form
func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// createRequestFromForm builds a create request from multipart form
// fields and extracts the optional file part
func (h *RepoHandler) createRequestFromForm(c *gin.Context) (*dto.CreateRepoRequest, *service.Upload, error) {
	req := &dto.CreateRepoRequest{
		Projectname: c.PostForm("projectname"),
	}

	if desc, ok := c.GetPostForm("description"); ok && desc != "" {
		req.Description = &desc
	}

	if raw, ok := c.GetPostForm("fechaInicio"); ok && raw != "" {
		date, err := dto.ParseDateOnly(raw)
		if err != nil {
			return nil, nil, apperrors.ValidationError("fechaInicio", err.Error())
		}
		req.FechaInicio = &date
	}
	if raw, ok := c.GetPostForm("fechaFin"); ok && raw != "" {
		date, err := dto.ParseDateOnly(raw)
		if err != nil {
			return nil, nil, apperrors.ValidationError("fechaFin", err.Error())
		}
		req.FechaFin = &date
	}

	if raw, ok := c.GetPostForm("client"); ok && raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, nil, apperrors.ValidationError("client", "invalid client identifier")
		}
		req.Client = &id
	}
	if raw, ok := c.GetPostForm("owner"); ok && raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, nil, apperrors.ValidationError("owner", "invalid owner identifier")
		}
		req.Owner = &id
	}

	upload, err := h.extractUpload(c)
	if err != nil {
		return nil, nil, err
	}

	return req, upload, nil
}

// updateRequestFromForm builds a partial update from multipart form
// fields. A key present with an empty value clears the nullable
// attributes; absent keys stay untouched.
func (h *RepoHandler) updateRequestFromForm(c *gin.Context) (*dto.UpdateRepoRequest, *service.Upload, error) {
	req := &dto.UpdateRepoRequest{}

	if v, ok := c.GetPostForm("projectname"); ok {
		req.Projectname = dto.Some(v)
	}
	if v, ok := c.GetPostForm("description"); ok {
		if v == "" {
			req.Description = dto.Null[string]()
		} else {
			req.Description = dto.Some(v)
		}
	}
	if v, ok := c.GetPostForm("fechaInicio"); ok {
		date, err := dto.ParseDateOnly(v)
		if err != nil {
			return nil, nil, apperrors.ValidationError("fechaInicio", err.Error())
		}
		req.FechaInicio = dto.Some(date)
	}
	if v, ok := c.GetPostForm("fechaFin"); ok {
		if v == "" {
			req.FechaFin = dto.Null[dto.DateOnly]()
		} else {
			date, err := dto.ParseDateOnly(v)
			if err != nil {
				return nil, nil, apperrors.ValidationError("fechaFin", err.Error())
			}
			req.FechaFin = dto.Some(date)
		}
	}
	if v, ok := c.GetPostForm("client"); ok {
		if v == "" {
			req.Client = dto.Null[uuid.UUID]()
		} else {
			id, err := uuid.Parse(v)
			if err != nil {
				return nil, nil, apperrors.ValidationError("client", "invalid client identifier")
			}
			req.Client = dto.Some(id)
		}
	}

	upload, err := h.extractUpload(c)
	if err != nil {
		return nil, nil, err
	}

	return req, upload, nil
}

// extractUpload opens the "file" part when present
func (h *RepoHandler) extractUpload(c *gin.Context) (*service.Upload, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, apperrors.BadRequest("invalid file upload", err)
	}

	return openUpload(fileHeader)
}

func openUpload(fileHeader *multipart.FileHeader) (*service.Upload, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.BadRequest("failed to read file upload", err)
	}
	return &service.Upload{
		FileName: fileHeader.Filename,
		Content:  file,
	}, nil
}
