package handlers

import (
	"errors"
	"net/http"
	"strings"

	"zoid-backend/pkg/config"
	"zoid-backend/pkg/database"
	"zoid-backend/pkg/middleware"
	"zoid-backend/pkg/models"
	"zoid-backend/pkg/utils"

	"go.uber.org/zap"
)

// OrgsHandler serves organization CRUD and member listing.
type OrgsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	logger *zap.Logger
}

func NewOrgsHandler(cfg *config.Config, db database.DatabaseInterface, logger *zap.Logger) *OrgsHandler {
	return &OrgsHandler{config: cfg, db: db, logger: logger}
}

// requireMember writes a 401 when userID has no membership in orgID.
func (h *OrgsHandler) requireMember(w http.ResponseWriter, userID, orgID string) bool {
	ok, err := h.db.HasMembership(orgID, userID)
	if err != nil || !ok {
		utils.WriteUnauthorizedResponse(w, "Not a member of organization")
		return false
	}
	return true
}

// POST /api/org
//
// Creating an organization also creates the owner's membership. The two
// inserts are not transactional; a failed membership insert compensates
// by deleting the just-created organization so creation stays
// all-or-nothing.
func (h *OrgsHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Sign in to create organizations")
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.WriteBadRequestResponse(w, "Name required")
		return
	}

	org := &models.Organization{Name: req.Name, Description: req.Description, OwnerID: user.ID}
	if err := h.db.CreateOrganization(org); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to create organization")
		return
	}

	m := &models.Membership{OrgID: org.ID, MemberID: user.ID}
	if err := h.db.AddMembership(m); err != nil {
		// Compensate so no organization exists without its owner membership
		if delErr := h.db.DeleteOrganization(org.ID); delErr != nil {
			h.logger.Error("failed to roll back organization create",
				zap.String("org_id", org.ID), zap.Error(delErr))
		}
		utils.WriteInternalServerErrorResponse(w, "Failed to create organization")
		return
	}

	utils.WriteCreatedResponse(w, map[string]interface{}{"organization": org})
}

// PUT /api/org
func (h *OrgsHandler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Sign in to update organizations")
		return
	}

	var req struct {
		Name         string  `json:"name"`
		Description  *string `json:"description"`
		Organization string  `json:"organization"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.Organization) == "" {
		utils.WriteBadRequestResponse(w, "organization id required")
		return
	}

	org, err := h.db.GetOrganization(req.Organization)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "Organization not found")
		} else {
			utils.WriteInternalServerErrorResponse(w, "Failed to load organization")
		}
		return
	}

	if org.OwnerID != user.ID {
		utils.WriteUnauthorizedResponse(w, "You do not have the permission to update this organization")
		return
	}

	org.Name = req.Name
	org.Description = req.Description
	if err := h.db.UpdateOrganization(org); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to update organization")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"organization": org})
}

// DELETE /api/org?id=
//
// Deletion cascades dependents before the parent: memberships, then
// ideas, then the organization. The steps are independent store calls;
// a mid-sequence failure aborts with 500 and may leave earlier steps
// applied.
func (h *OrgsHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("id")
	if orgID == "" {
		utils.WriteBadRequestResponse(w, "Organization ID is required")
		return
	}

	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Sign in to delete organizations")
		return
	}

	org, err := h.db.GetOrganization(orgID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "Organization not found")
		} else {
			utils.WriteInternalServerErrorResponse(w, "Failed to load organization")
		}
		return
	}

	if org.OwnerID != user.ID {
		utils.WriteUnauthorizedResponse(w, "You do not have the permission to delete this organization")
		return
	}

	if err := h.db.DeleteMembershipsByOrg(orgID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to delete organization")
		return
	}
	if err := h.db.DeleteIdeasByOrg(orgID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to delete organization")
		return
	}
	if err := h.db.DeleteOrganization(orgID); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to delete organization")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"deleted": true, "id": orgID})
}

// GET /api/org
func (h *OrgsHandler) ListMyOrganizations(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	orgs, err := h.db.ListUserOrganizations(user.ID)
	if err != nil {
		h.logger.Error("list organizations failed", zap.String("user_id", user.ID), zap.Error(err))
		utils.WriteInternalServerErrorResponse(w, "Failed to list organizations")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"organizations": orgs})
}

// GET /api/org/members?org_id=
func (h *OrgsHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("org_id")
	if orgID == "" {
		utils.WriteBadRequestResponse(w, "org_id required")
		return
	}

	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	if !h.requireMember(w, user.ID, orgID) {
		return
	}

	members, err := h.db.ListMembers(orgID)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to list members")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{"members": members})
}
