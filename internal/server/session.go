package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	goFlow "github.com/MrEthical07/goFlow"
	"github.com/MrEthical07/goFlow/pkg/log"
	"github.com/MrEthical07/goFlow/transport"
)

func (s *Server) logout(c *gin.Context) {
	ctx := s.providerContext(c)
	routes := s.engine.Config().Routes
	nav := newNavigator(routes.DefaultRedirect, routes.FlowQueryParam, "")

	if err := s.engine.Logout(ctx, nav); err != nil {
		t := s.engine.Translator(c.GetHeader("Accept-Language"))
		c.JSON(http.StatusBadGateway, logoutResponse{Error: t.Translate("logoutFailed")})
		return
	}
	c.JSON(http.StatusOK, logoutResponse{Directives: nav.Directives()})
}

// viewer reports the signed-in identity. A verified session token wins;
// otherwise the provider is asked for the session behind the cookies.
func (s *Server) viewer(c *gin.Context) {
	if v, ok := goFlow.ViewerFromContext(c.Request.Context()); ok {
		c.JSON(http.StatusOK, viewerResponse{Authenticated: true, Viewer: &v, Initials: v.Initials()})
		return
	}
	if s.browser == nil {
		c.JSON(http.StatusOK, viewerResponse{})
		return
	}

	ctx := s.providerContext(c)
	session, err := s.browser.Whoami(ctx)
	if errors.Is(err, transport.ErrNoSession) {
		c.JSON(http.StatusOK, viewerResponse{})
		return
	}
	if err != nil {
		s.logger.WarnContext(ctx, "session lookup failed", log.Error(err))
		errorJSON(c, http.StatusBadGateway, err)
		return
	}

	v := goFlow.Viewer{
		IdentityID: session.IdentityID,
		SessionID:  session.ID,
		Email:      session.Email,
		Name:       session.Name,
		AvatarURL:  session.AvatarURL,
	}
	c.JSON(http.StatusOK, viewerResponse{Authenticated: true, Viewer: &v, Initials: v.Initials()})
}
