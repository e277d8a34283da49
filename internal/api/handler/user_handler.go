package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

// maxPictureSize caps profile picture uploads at 2 MiB.
const maxPictureSize = 2 << 20

// pictureTypes maps the allowed upload extensions to their content type.
var pictureTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
	".svgz": "image/svg+xml",
}

// UserHandler handles HTTP requests for account administration and profiles.
type UserHandler struct {
	accounts ports.AccountService
	profiles ports.ProfileService
}

func NewUserHandler(accounts ports.AccountService, profiles ports.ProfileService) *UserHandler {
	return &UserHandler{accounts: accounts, profiles: profiles}
}

type setActiveRequest struct {
	UserID string `json:"user_id"`
	Active *bool  `json:"active" validate:"required"`
}

type setAdminRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type publicProfileResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
}

type myPollsResponse struct {
	PollsCreated  []string `json:"polls_created"`
	PollsAnswered []string `json:"polls_answered"`
	PollsVisited  []string `json:"polls_visited"`
}

// MyPolls returns the poll ids tracked on the caller's own account.
//
// @Summary      List the caller's poll activity
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  myPollsResponse
// @Failure      401  {object}  map[string]string
// @Router       /users/polls [get]
func (h *UserHandler) MyPolls(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.accounts.Get(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, myPollsResponse{
		PollsCreated:  emptyIfNil(user.PollsCreated),
		PollsAnswered: emptyIfNil(user.PollsAnswered),
		PollsVisited:  emptyIfNil(user.PollsVisited),
	})
}

// Get returns the public profile of an account.
//
// @Summary      Get a public profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  publicProfileResponse
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.accounts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, publicProfileResponse{
		ID:            user.ID,
		Username:      user.Username,
		ProfilePicURL: user.ProfilePicURL,
	})
}

// SetActive toggles the active flag on the caller's account, or on another
// account when the caller is an admin. Deactivation revokes the session.
//
// @Summary      Activate or deactivate an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setActiveRequest  true  "Target and desired state"
// @Success      200   {object}  domain.User
// @Failure      403   {object}  map[string]string
// @Router       /users/set_active [post]
func (h *UserHandler) SetActive(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req setActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.accounts.SetActiveState(c.Request().Context(), userID, req.UserID, *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SetAdmin flips the admin flag on the target account. Admin only.
//
// @Summary      Toggle admin privilege on an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setAdminRequest  true  "Target account"
// @Success      200   {object}  domain.User
// @Failure      403   {object}  map[string]string
// @Router       /users/set_admin [post]
func (h *UserHandler) SetAdmin(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req setAdminRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.accounts.SetAdminState(c.Request().Context(), userID, req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete removes the caller's own account. The account must already be
// deactivated.
//
// @Summary      Delete the caller's account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      204
// @Failure      406  {object}  map[string]string
// @Router       /users/delete [post]
func (h *UserHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.accounts.Delete(c.Request().Context(), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List returns every account except the caller's. Admin only.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	users, err := h.accounts.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// UploadProfilePic stores a new profile picture from a multipart form. The
// file must arrive under the "picture" field.
//
// @Summary      Upload a profile picture
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        picture  formData  file  true  "Picture file (png, jpg, jpeg, svg, svgz)"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  map[string]string
// @Failure      413      {object}  map[string]string
// @Router       /users/profile_pic [post]
func (h *UserHandler) UploadProfilePic(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("picture")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "picture file is required")
	}
	if fh.Size > maxPictureSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "picture exceeds the 2MB limit")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType, ok := pictureTypes[ext]
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported picture format")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable picture file")
	}
	defer src.Close()

	user, err := h.profiles.SetPicture(c.Request().Context(), userID, ext, src, contentType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// RemoveProfilePic deletes the caller's profile picture.
//
// @Summary      Remove the profile picture
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      409  {object}  map[string]string
// @Router       /users/profile_pic/remove [post]
func (h *UserHandler) RemoveProfilePic(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.profiles.RemovePicture(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
