package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pollwise/poll-api/internal/core/domain"
	"github.com/pollwise/poll-api/internal/core/ports"
)

// PollHandler handles HTTP requests for poll CRUD, answering and templates.
type PollHandler struct {
	polls ports.PollService
}

func NewPollHandler(polls ports.PollService) *PollHandler {
	return &PollHandler{polls: polls}
}

// Create registers a new poll owned by the caller.
//
// @Summary      Create a poll
// @Tags         polls
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPollRequest  true  "Poll definition"
// @Success      201   {object}  domain.Poll
// @Failure      400   {object}  map[string]string
// @Router       /polls/create [post]
func (h *PollHandler) Create(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createPollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	settings, err := toDomainSettings(req.Settings)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	poll, err := h.polls.Create(c.Request().Context(), userID, ports.CreatePollInput{
		Title:       req.Title,
		Description: req.Description,
		Questions:   toDomainQuestions(req.Questions),
		Settings:    settings,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, poll)
}

// Get returns a poll by id and tracks the visit on the viewer's account.
//
// @Summary      Get a poll
// @Tags         polls
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Poll id"
// @Success      200  {object}  domain.Poll
// @Failure      404  {object}  map[string]string
// @Router       /polls/{id} [get]
func (h *PollHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	poll, err := h.polls.Get(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, poll)
}

// Edit applies a partial update to a poll. Owner or admin only.
//
// @Summary      Edit a poll
// @Tags         polls
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      editPollRequest  true  "Fields to update"
// @Success      200   {object}  domain.Poll
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /polls/edit [post]
func (h *PollHandler) Edit(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req editPollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in := ports.EditPollInput{
		Description: req.Description,
		Questions:   toDomainQuestions(req.Questions),
	}
	if req.Settings != nil {
		settings, err := toDomainSettings(req.Settings)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		in.Settings = &settings
	}

	poll, err := h.polls.Edit(c.Request().Context(), req.PollID, userID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, poll)
}

// Rename changes a poll's title. Owner or admin only.
//
// @Summary      Rename a poll
// @Tags         polls
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      renamePollRequest  true  "Poll id and new title"
// @Success      200   {object}  domain.Poll
// @Failure      403   {object}  map[string]string
// @Router       /polls/rename [post]
func (h *PollHandler) Rename(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req renamePollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	poll, err := h.polls.Rename(c.Request().Context(), req.PollID, userID, req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, poll)
}

// Delete removes a poll. Owner or admin only.
//
// @Summary      Delete a poll
// @Tags         polls
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  pollIDRequest  true  "Poll id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /polls/delete [post]
func (h *PollHandler) Delete(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req pollIDRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.polls.Delete(c.Request().Context(), req.PollID, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Answer records the caller's submission for a poll.
//
// @Summary      Answer a poll
// @Tags         polls
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      answerPollRequest  true  "Responses"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /polls/answer [post]
func (h *PollHandler) Answer(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req answerPollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.polls.Answer(c.Request().Context(), req.PollID, userID, toDomainResponses(req.Responses)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "answer recorded"})
}

// Answers lists the submissions for a poll. Owner or admin only.
//
// @Summary      List the answers of a poll
// @Tags         polls
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Poll id"
// @Success      200  {array}   domain.Answer
// @Failure      403  {object}  map[string]string
// @Router       /polls/{id}/answers [get]
func (h *PollHandler) Answers(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	answers, err := h.polls.ListAnswers(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	if answers == nil {
		answers = []domain.Answer{}
	}
	return c.JSON(http.StatusOK, answers)
}

// Templates lists the available poll templates.
//
// @Summary      List poll templates
// @Tags         polls
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.PollTemplate
// @Router       /polls/templates [get]
func (h *PollHandler) Templates(c echo.Context) error {
	templates, err := h.polls.Templates(c.Request().Context())
	if err != nil {
		return err
	}
	if templates == nil {
		templates = []domain.PollTemplate{}
	}
	return c.JSON(http.StatusOK, templates)
}

// Template returns a single poll template by name.
//
// @Summary      Get a poll template
// @Tags         polls
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Template name"
// @Success      200   {object}  domain.PollTemplate
// @Failure      404   {object}  map[string]string
// @Router       /polls/templates/{name} [get]
func (h *PollHandler) Template(c echo.Context) error {
	template, err := h.polls.Template(c.Request().Context(), c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, template)
}
