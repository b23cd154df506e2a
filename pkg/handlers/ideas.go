package handlers

import (
	"errors"
	"net/http"

	"zoid-backend/pkg/config"
	"zoid-backend/pkg/database"
	"zoid-backend/pkg/middleware"
	"zoid-backend/pkg/models"
	"zoid-backend/pkg/utils"

	"go.uber.org/zap"
)

// IdeasHandler serves idea listing, creation, vote updates and deletion.
type IdeasHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	logger *zap.Logger
}

func NewIdeasHandler(cfg *config.Config, db database.DatabaseInterface, logger *zap.Logger) *IdeasHandler {
	return &IdeasHandler{config: cfg, db: db, logger: logger}
}

// GET /api/ideas?id=
// Reads are not authenticated.
func (h *IdeasHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("id")

	ideas, err := h.db.ListIdeasByOrg(orgID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list ideas")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"ideas": ideas})
}

// POST /api/ideas
//
// Any member of the organization can create ideas. The author is always
// the caller and votes start empty regardless of what was submitted.
func (h *IdeasHandler) CreateIdeas(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Unauthorized")
		return
	}

	var req struct {
		Ideas []struct {
			Name string `json:"name"`
		} `json:"ideas"`
		Organization string `json:"organization"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	isMember, err := h.db.HasMembership(req.Organization, user.ID)
	if err != nil || !isMember {
		utils.WriteUnauthorizedResponse(w, "Unauthorized")
		return
	}

	ideas := make([]models.Idea, 0, len(req.Ideas))
	for _, i := range req.Ideas {
		ideas = append(ideas, models.Idea{
			OrgID:    req.Organization,
			Name:     i.Name,
			AuthorID: user.ID,
			Votes:    models.NewVotes(),
		})
	}

	inserted, err := h.db.CreateIdeas(ideas)
	if err != nil {
		h.logger.Error("idea insert failed", zap.String("org_id", req.Organization), zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Failed to create ideas")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"ideas": inserted})
}

// PUT /api/ideas
//
// Overwrites one idea's vote sets with the caller-submitted value.
// Membership is the only check; the server does not validate that the
// submitted sets are a legal transition from the stored ones, and two
// concurrent updates can lose one writer's change (whole-document
// overwrite, no version check).
func (h *IdeasHandler) UpdateIdeaVotes(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Unauthorized")
		return
	}

	var req struct {
		Idea models.Idea `json:"idea"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}

	isMember, err := h.db.HasMembership(req.Idea.OrgID, user.ID)
	if err != nil || !isMember {
		utils.WriteUnauthorizedResponse(w, "Unauthorized")
		return
	}

	updated, err := h.db.UpdateIdeaVotes(req.Idea.ID, req.Idea.Votes)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to update idea")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"ideas": updated})
}

// DELETE /api/ideas?id=&organization=
// Allowed for the idea's author and the organization owner.
func (h *IdeasHandler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	ideaID := r.URL.Query().Get("id")
	orgID := r.URL.Query().Get("organization")
	if ideaID == "" || orgID == "" {
		utils.WriteBadRequestResponse(w, "Bad Request")
		return
	}

	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Unauthorized")
		return
	}

	org, err := h.db.GetOrganization(orgID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "Not Found")
		} else {
			utils.WriteInternalServerErrorResponse(w, "Failed to load organization")
		}
		return
	}

	isMember, err := h.db.HasMembership(orgID, user.ID)
	if err != nil || !isMember {
		utils.WriteUnauthorizedResponse(w, "Unauthorized")
		return
	}

	idea, err := h.db.GetIdea(ideaID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "Not Found")
		} else {
			utils.WriteInternalServerErrorResponse(w, "Failed to load idea")
		}
		return
	}

	if org.OwnerID != user.ID && idea.AuthorID != user.ID {
		utils.WriteUnauthorizedResponse(w, "Unauthorized")
		return
	}

	deleted, err := h.db.DeleteIdea(ideaID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to delete idea")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"ideas": deleted})
}
