package otfgradesync

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/nsip/otf-gradesync/internal/canvas"
	"github.com/nsip/otf-gradesync/internal/gradesync"
	"github.com/nsip/otf-gradesync/internal/resolver"
	"github.com/nsip/otf-gradesync/internal/scheme"
	"github.com/nsip/otf-gradesync/internal/session"
	"github.com/nsip/otf-gradesync/internal/util"
	"github.com/pkg/errors"
)

type GradeSyncService struct {
	// embedded web server to handle picker requests
	e *echo.Echo
	// the unique name of this service when running multiple instances
	serviceName string
	// the unique id of this service when running multiple instances
	serviceID string
	// the host address this service instance is running on
	serviceHost string
	// the port that this service instance is running on
	servicePort int
	// base address of the canvas instance
	canvasURL string
	// api token used to read from canvas
	canvasToken string
	// per-request timeout for canvas calls
	canvasTimeout time.Duration
	// source of assignment/course/account/standard lookups
	fetcher  resolver.Fetcher
	resolver *resolver.Resolver
	// live picker sessions, one per grading-view activation
	sessions   *session.Store
	sessionTTL time.Duration
	// default locale for score text
	locale string
	// picker configuration used when a session does not override it
	defaults gradesync.Config
	logLevel log.Lvl
}

//
// Query paramters sent to the
// resolve method.
//
type ResolveRequest struct {
	CourseID     string `json:"courseId" form:"courseId" query:"courseId"`
	AssignmentID string `json:"assignmentId" form:"assignmentId" query:"assignmentId"`
}

//
// sent by the host each time a grading view becomes active
//
type ActivateRequest struct {
	CourseID     string `json:"courseId" form:"courseId"`
	AssignmentID string `json:"assignmentId" form:"assignmentId"`
	//
	// current text of the grade input
	//
	Value string `json:"value" form:"value"`
	//
	// the read-only "( current / possible )" text beside the input
	//
	GradeText string `json:"gradeText" form:"gradeText"`
	//
	// page language, used to read numbers in the grade text
	//
	Locale string `json:"locale" form:"locale"`
	//
	// id of the session for the view being navigated away from, if any
	//
	Supersedes string `json:"supersedes" form:"supersedes"`
	//
	// optional overrides of the service picker defaults
	//
	AlwaysOpenOnFocus *bool  `json:"alwaysOpenOnFocus"`
	FitOptions        *bool  `json:"fitOptions"`
	LetterShortcut    *bool  `json:"letterShortcut"`
	LetterPattern     string `json:"letterPattern"`
}

// EventRequest is one interaction, plus refreshed grade text if it changed.
type EventRequest struct {
	gradesync.Event
	GradeText string `json:"gradeText"`
}

//
// create a new service instance
//
func New(options ...Option) (*GradeSyncService, error) {

	srvc := GradeSyncService{
		serviceHost: "localhost",
		sessionTTL:  30 * time.Minute,
		locale:      "en",
		logLevel:    log.INFO,
	}
	if err := srvc.setOptions(PickerDefaults(false, false, false, "")); err != nil {
		return nil, err
	}

	if err := srvc.setOptions(options...); err != nil {
		return nil, err
	}

	if srvc.serviceName == "" {
		srvc.serviceName = util.GenerateName()
	}
	if srvc.serviceID == "" {
		srvc.serviceID = util.GenerateID()
	}

	log.SetLevel(srvc.logLevel)

	if srvc.fetcher == nil {
		client, err := canvas.New(canvas.Config{
			BaseURL: srvc.canvasURL,
			Token:   srvc.canvasToken,
			Timeout: srvc.canvasTimeout,
		})
		if err != nil {
			return nil, errors.Wrap(err, "cannot create canvas client")
		}
		srvc.fetcher = client
	}
	rlog := log.New("resolver")
	rlog.SetLevel(srvc.logLevel)
	srvc.resolver = resolver.New(srvc.fetcher, rlog)
	srvc.sessions = session.NewStore(srvc.sessionTTL)

	srvc.e = echo.New()
	srvc.e.HideBanner = true
	srvc.e.Logger.SetLevel(srvc.logLevel)
	// add pingable method to know we're up
	srvc.e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, "OK")
	})
	// add lookup method
	srvc.e.POST("/resolve", srvc.buildResolveHandler())
	// add session methods
	srvc.e.POST("/sessions", srvc.buildActivateHandler())
	srvc.e.GET("/sessions/:id", srvc.buildViewHandler())
	srvc.e.POST("/sessions/:id/events", srvc.buildEventHandler())
	srvc.e.DELETE("/sessions/:id", srvc.buildCloseHandler())

	return &srvc, nil
}

//
// start the service running
//
func (s *GradeSyncService) Start() {

	address := fmt.Sprintf("%s:%d", s.serviceHost, s.servicePort)
	go func(addr string) {
		if err := s.e.Start(addr); err != nil && err != http.ErrServerClosed {
			s.e.Logger.Info("error starting server: ", err, ", shutting down...")
			// attempt clean shutdown by raising sig int
			p, _ := os.FindProcess(os.Getpid())
			p.Signal(os.Interrupt)
		}
	}(address)

}

//
// returns the grading standard that applies to an assignment
// courseId: canvas course id
// assignmentId: canvas assignment id
//
func (s *GradeSyncService) buildResolveHandler() echo.HandlerFunc {

	return func(c echo.Context) error {
		rr := &ResolveRequest{}
		if err := c.Bind(rr); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if rr.CourseID == "" || rr.AssignmentID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "must supply values for courseId & assignmentId")
		}

		std, err := s.resolver.Resolve(c.Request().Context(), resolver.Context{
			CourseID:     rr.CourseID,
			AssignmentID: rr.AssignmentID,
		})
		if err != nil {
			return s.resolveError(err)
		}

		return c.JSON(http.StatusOK, std)
	}
}

//
// runs resolution for a newly active grading view and
// builds the picker session over the grade input
//
func (s *GradeSyncService) buildActivateHandler() echo.HandlerFunc {

	return func(c echo.Context) error {
		ar := &ActivateRequest{}
		if err := c.Bind(ar); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if ar.CourseID == "" || ar.AssignmentID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "must supply values for courseId & assignmentId")
		}

		cfg, err := s.pickerConfig(ar)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		// the view being left is gone whether or not this one resolves
		if ar.Supersedes != "" {
			s.sessions.Delete(ar.Supersedes)
		}

		ctx := c.Request().Context()
		std, err := s.resolver.Resolve(ctx, resolver.Context{
			CourseID:     ar.CourseID,
			AssignmentID: ar.AssignmentID,
		})
		if err != nil {
			return s.resolveError(err)
		}
		// host went away while we were resolving
		if ctx.Err() != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "activation abandoned")
		}

		lang := ar.Locale
		if lang == "" {
			lang = s.locale
		}
		sess, err := session.New(std, session.Params{
			CourseID:     ar.CourseID,
			AssignmentID: ar.AssignmentID,
			Value:        ar.Value,
			GradeText:    ar.GradeText,
			Locale:       lang,
			Config:       cfg,
		})
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		s.sessions.Put(sess)

		return c.JSON(http.StatusCreated, s.sessionResponse(sess, std, sess.View()))
	}
}

func (s *GradeSyncService) buildViewHandler() echo.HandlerFunc {

	return func(c echo.Context) error {
		sess, err := s.sessions.Get(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return c.JSON(http.StatusOK, s.sessionResponse(sess, scheme.Standard{}, sess.View()))
	}
}

//
// applies one host interaction to a session
// returns the updated view and whether the host
// should suppress the native event
//
func (s *GradeSyncService) buildEventHandler() echo.HandlerFunc {

	return func(c echo.Context) error {
		sess, err := s.sessions.Get(c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}

		er := &EventRequest{}
		if err := c.Bind(er); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		out, view, err := sess.Handle(er.Event, er.GradeText)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"preventDefault": out.PreventDefault,
			"view":           view,
		})
	}
}

// navigation left the grading view
func (s *GradeSyncService) buildCloseHandler() echo.HandlerFunc {

	return func(c echo.Context) error {
		if !s.sessions.Delete(c.Param("id")) {
			return echo.NewHTTPError(http.StatusNotFound, "no such session")
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func (s *GradeSyncService) resolveError(err error) error {
	if errors.Is(err, resolver.ErrNotFound) {
		s.e.Logger.Error("grading scheme not found: ", err)
		return echo.NewHTTPError(http.StatusNotFound, "grading scheme not found")
	}
	s.e.Logger.Warn("resolution failed: ", err)
	return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
}

//
// merges per-session overrides onto the service defaults
//
func (s *GradeSyncService) pickerConfig(ar *ActivateRequest) (gradesync.Config, error) {
	cfg := s.defaults
	if ar.AlwaysOpenOnFocus != nil {
		cfg.AlwaysOpenOnFocus = *ar.AlwaysOpenOnFocus
	}
	if ar.FitOptions != nil {
		cfg.FitOptions = *ar.FitOptions
	}
	if ar.LetterShortcut != nil {
		cfg.LetterShortcut = *ar.LetterShortcut
	}
	if ar.LetterPattern != "" {
		re, err := gradesync.CompileLetterPattern(ar.LetterPattern)
		if err != nil {
			return gradesync.Config{}, err
		}
		cfg.LetterPattern = re
	}
	return cfg, nil
}

func (s *GradeSyncService) sessionResponse(sess *session.Session, std scheme.Standard, view gradesync.View) map[string]interface{} {
	resp := map[string]interface{}{
		"sessionId":    sess.ID,
		"courseId":     sess.CourseID,
		"assignmentId": sess.AssignmentID,
		"view":         view,
		"serviceID":    s.serviceID,
		"serviceName":  s.serviceName,
	}
	if std.ID != "" {
		resp["gradingStandard"] = map[string]interface{}{
			"id":    std.ID,
			"title": std.Title,
		}
	}
	return resp
}

//
// shut the server down gracefully
//
func (s *GradeSyncService) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(ctx); err != nil {
		fmt.Println("could not shut down server cleanly: ", err)
		s.e.Logger.Fatal(err)
	}

}

func (s *GradeSyncService) PrintConfig() {

	fmt.Println("\n\tOTF-GradeSync Service Configuration")
	fmt.Println("\t-----------------------------------")

	s.printID()
	s.printCanvasConfig()
	s.printPickerConfig()

}

func (s *GradeSyncService) printID() {
	fmt.Println("\tservice name:\t\t", s.serviceName)
	fmt.Println("\tservice ID:\t\t", s.serviceID)
	fmt.Println("\tservice host:\t\t", s.serviceHost)
	fmt.Println("\tservice port:\t\t", s.servicePort)
}

func (s *GradeSyncService) printCanvasConfig() {
	fmt.Println("\tcanvas url:\t\t", s.canvasURL)
	// display only the tail of the token
	token := s.canvasToken
	if len(token) > 4 {
		token = "..." + token[len(token)-4:]
	}
	fmt.Println("\tcanvas token(partial):\t", token)
}

func (s *GradeSyncService) printPickerConfig() {
	fmt.Println("\tsession ttl:\t\t", s.sessionTTL)
	fmt.Println("\tlocale:\t\t\t", s.locale)
	fmt.Println("\talways open on focus:\t", s.defaults.AlwaysOpenOnFocus)
	fmt.Println("\tfit options:\t\t", s.defaults.FitOptions)
	fmt.Println("\tletter shortcut:\t", s.defaults.LetterShortcut)
	fmt.Println("\tletter pattern:\t\t", s.defaults.LetterPattern)
}

func parseLevel(level string) (log.Lvl, error) {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return log.INFO, errors.Errorf("unknown log level %q", level)
}
