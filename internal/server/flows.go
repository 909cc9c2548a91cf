package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	goFlow "github.com/MrEthical07/goFlow"
	"github.com/MrEthical07/goFlow/pkg/log"
)

func (s *Server) flowType(c *gin.Context) (goFlow.FlowType, bool) {
	kind := goFlow.FlowType(c.Param("type"))
	if !kind.Valid() {
		errorJSON(c, http.StatusNotFound, errUnknownFlowType)
		return "", false
	}
	return kind, true
}

// getFlow returns the flow named by the flow query parameter, or starts a
// new browser flow when none is given.
func (s *Server) getFlow(c *gin.Context) {
	kind, ok := s.flowType(c)
	if !ok {
		return
	}

	param := s.engine.Config().Routes.FlowQueryParam
	id := c.Query(param)
	returnTo := c.Query("return_to")
	ctx := s.providerContext(c)
	nav := newNavigator(s.engine.Config().Routes.ForType(kind), param, id)

	var (
		doc goFlow.Document
		err error
	)
	if id == "" {
		if s.browser == nil {
			errorJSON(c, http.StatusNotImplemented, errBrowserUnavailable)
			return
		}
		doc, err = s.browser.CreateBrowserFlow(ctx, kind, returnTo)
	} else {
		doc, err = s.engine.Provider().GetFlow(ctx, kind, id)
	}
	if err != nil {
		s.respondFlowError(ctx, c, kind, id, nav, err)
		return
	}

	coord, err := s.engine.Coordinator(doc, s.coordinatorOptions(c, kind, nav))
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, s.flowView(coord, nav))
}

// submitFlow validates the form, submits it to the provider and returns
// the resulting flow state.
func (s *Server) submitFlow(c *gin.Context) {
	kind, ok := s.flowType(c)
	if !ok {
		return
	}

	param := s.engine.Config().Routes.FlowQueryParam
	id := c.Query(param)
	if id == "" {
		errorJSON(c, http.StatusBadRequest, errFlowIDRequired)
		return
	}

	raw, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(raw) {
		errorJSON(c, http.StatusBadRequest, errInvalidJSON)
		return
	}

	f, isCode, err := formFor(kind, raw)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	t := s.engine.Translator(c.GetHeader("Accept-Language"))
	fieldErrors, err := bindForm(raw, f, t)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, flowResponse{FieldErrors: fieldErrors})
		return
	}

	ctx := s.providerContext(c)
	nav := newNavigator(s.engine.Config().Routes.ForType(kind), param, id)

	doc, err := s.engine.Provider().GetFlow(ctx, kind, id)
	if err != nil {
		s.respondFlowError(ctx, c, kind, id, nav, err)
		return
	}

	coord, err := s.engine.Coordinator(doc, s.coordinatorOptions(c, kind, nav))
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}

	if isCode {
		if _, err := coord.SubmitCode(ctx, f.body()); err != nil {
			submitFailed(c, err)
			return
		}
		c.JSON(http.StatusOK, s.flowView(coord, nav))
		return
	}

	res, err := coord.Submit(ctx, f.body())
	if err != nil {
		submitFailed(c, err)
		return
	}
	view := s.flowView(coord, nav)
	view.Outcome = res.Outcome.String()
	c.JSON(http.StatusOK, view)
}

// submitFailed answers coordinator errors. Provider failures never get
// here; they are resolved into the flow view.
func submitFailed(c *gin.Context, err error) {
	if errors.Is(err, goFlow.ErrSuperseded) {
		errorJSON(c, http.StatusConflict, err)
		return
	}
	errorJSON(c, http.StatusInternalServerError, err)
}

// respondFlowError resolves a failed flow read the way a failed submission
// is resolved: expired flows restart, redirects are followed and the rest
// surface the default error.
func (s *Server) respondFlowError(ctx context.Context, c *gin.Context, kind goFlow.FlowType, id string, nav *navigator, err error) {
	s.logger.DebugContext(ctx, "flow read failed",
		log.FlowID(id),
		log.FlowType(kind),
		log.Error(err),
	)

	coord, cerr := s.engine.Coordinator(goFlow.Document{ID: id, Type: kind}, s.coordinatorOptions(c, kind, nav))
	if cerr != nil {
		errorJSON(c, http.StatusInternalServerError, cerr)
		return
	}
	coord.HandleFlowError(ctx, err)

	view := s.flowView(coord, nav)
	if view.Flow != nil && view.Flow.ID == "" {
		view.Flow = nil
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) coordinatorOptions(c *gin.Context, kind goFlow.FlowType, nav *navigator) goFlow.CoordinatorOptions {
	routes := s.engine.Config().Routes
	opts := goFlow.CoordinatorOptions{
		Navigator: nav,
		FlowType:  kind,
		Locales:   []string{c.GetHeader("Accept-Language")},
		ReturnTo:  c.Query("return_to"),
	}
	if kind.IsCodeFlow() {
		next := routes.DefaultRedirect
		if kind == goFlow.FlowRecovery {
			next = routes.Settings
		}
		opts.OnCodeSuccess = func(context.Context) error {
			nav.Push(next)
			return nil
		}
		opts.ClearCode = func() {}
	}
	return opts
}

func (s *Server) flowView(coord *goFlow.Coordinator, nav *navigator) flowResponse {
	doc := coord.Flow()
	view := flowResponse{
		Flow:        &doc,
		FieldErrors: coord.FieldErrors(),
		CSRFToken:   coord.CSRFToken(),
		Directives:  nav.Directives(),
	}
	if msg, ok := coord.GlobalError(); ok {
		view.GlobalError = msg
	}
	if len(view.FieldErrors) == 0 {
		view.FieldErrors = nil
	}
	if coord.Type().IsCodeFlow() {
		view.CodeState = coord.CodeState().String()
	}
	return view
}
