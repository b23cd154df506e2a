package handlers

import (
	"errors"
	"net/http"
	"strings"

	"zoid-backend/pkg/config"
	"zoid-backend/pkg/database"
	"zoid-backend/pkg/invite"
	"zoid-backend/pkg/middleware"
	"zoid-backend/pkg/models"
	"zoid-backend/pkg/utils"

	"go.uber.org/zap"
)

// InvitesHandler serves invitation issuing, acceptance and member removal.
type InvitesHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	codec  *invite.Codec
	logger *zap.Logger
}

func NewInvitesHandler(cfg *config.Config, db database.DatabaseInterface, logger *zap.Logger) *InvitesHandler {
	return &InvitesHandler{
		config: cfg,
		db:     db,
		codec:  invite.NewCodec(cfg.JWTSecret),
		logger: logger,
	}
}

// POST /api/org/invite
//
// Only the owner can invite. The response carries a link embedding a
// signed 7-day token; nothing is persisted, so the link stays valid for
// its whole window no matter what happens to the organization after.
func (h *InvitesHandler) InviteMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Organization string `json:"organization"`
		Email        string `json:"email"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Your request is missing a valid body")
		return
	}
	if req.Organization == "" || strings.TrimSpace(req.Email) == "" {
		utils.WriteBadRequestResponse(w, "Your request is missing a valid body")
		return
	}

	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "You need to sign in first")
		return
	}

	org, err := h.db.GetOrganization(req.Organization)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "The organization you sent does not exist")
		} else {
			utils.WriteInternalServerErrorResponse(w, "Failed to load organization")
		}
		return
	}

	if org.OwnerID != user.ID {
		utils.WriteUnauthorizedResponse(w, "You need to be the owner of the organization to invite users")
		return
	}

	token, err := h.codec.Issue(strings.TrimSpace(req.Email), org.ID)
	if err != nil {
		h.logger.Error("failed to issue invitation", zap.String("org_id", org.ID), zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Failed to create invitation")
		return
	}

	inviteLink := utils.BaseURL(r, h.config.BaseURL) + "/api/org/invite?token=" + token
	utils.WriteSuccessResponse(w, map[string]interface{}{"invite_link": inviteLink})
}

// GET /api/org/invite?token=
//
// Accepts an invitation and redirects to the organization dashboard.
// Check order is observable behavior: missing token, unauthenticated,
// invalid/expired token, email mismatch, organization gone, already a
// member, store failure.
func (h *InvitesHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.WriteBadRequestResponse(w, "Your request is missing a valid token")
		return
	}

	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "You need to sign in first")
		return
	}

	claim, err := h.codec.Verify(token)
	if err != nil {
		utils.WriteErrorResponseWithCode(w, http.StatusBadRequest, "INVALID_TOKEN",
			"The token you sent is invalid", "")
		return
	}

	if claim.Email != user.Email {
		utils.WriteErrorResponseWithCode(w, http.StatusUnauthorized, "EMAIL_MISMATCH",
			"You need to be signed in with the correct email", "")
		return
	}

	org, err := h.db.GetOrganization(claim.Organization)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "The organization no longer exists")
		} else {
			utils.WriteInternalServerErrorResponse(w, "An error occurred while checking the organization")
		}
		return
	}

	isMember, err := h.db.HasMembership(org.ID, user.ID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "An error occurred while checking your membership")
		return
	}
	if isMember {
		utils.WriteErrorResponseWithCode(w, http.StatusBadRequest, "ALREADY_MEMBER",
			"You are already a member of this organization", "")
		return
	}

	m := &models.Membership{OrgID: org.ID, MemberID: user.ID}
	if err := h.db.AddMembership(m); err != nil {
		utils.WriteInternalServerErrorResponse(w, "An error occurred while adding you to the organization")
		return
	}

	http.Redirect(w, r, utils.BaseURL(r, h.config.BaseURL)+"/dashboard/"+org.ID, http.StatusFound)
}

// DELETE /api/org/invite
//
// Removes members from an organization along with every idea they
// authored in it. Both deletions are attempted; a failure of either
// reports 500 even if the other went through.
func (h *InvitesHandler) RemoveMembers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Organization string   `json:"organization"`
		Members      []string `json:"members"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Your request is missing a valid query")
		return
	}
	if req.Organization == "" || len(req.Members) == 0 {
		utils.WriteBadRequestResponse(w, "Your request is missing a valid query")
		return
	}

	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "You need to sign in first")
		return
	}

	org, err := h.db.GetOrganization(req.Organization)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "The organization you sent does not exist")
		} else {
			utils.WriteInternalServerErrorResponse(w, "Failed to load organization")
		}
		return
	}

	if org.OwnerID != user.ID {
		utils.WriteUnauthorizedResponse(w, "You need to be the owner of the organization to remove users")
		return
	}

	ideasErr := h.db.DeleteIdeasByAuthors(org.ID, req.Members)
	membershipErr := h.db.DeleteMemberships(org.ID, req.Members)
	if ideasErr != nil || membershipErr != nil {
		h.logger.Error("member removal failed",
			zap.String("org_id", org.ID),
			zap.NamedError("ideas_err", ideasErr),
			zap.NamedError("membership_err", membershipErr))
		utils.WriteInternalServerErrorResponse(w, "Failed to delete members")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"removed": req.Members})
}
