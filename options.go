package otfgradesync

import (
	"time"

	"github.com/nsip/otf-gradesync/internal/gradesync"
	"github.com/nsip/otf-gradesync/internal/resolver"
	"github.com/nsip/otf-gradesync/internal/util"
	"github.com/pkg/errors"
)

type Option func(*GradeSyncService) error

//
// apply all supplied options to the service
// returns any error encountered while applying the options
//
func (srvc *GradeSyncService) setOptions(options ...Option) error {
	for _, opt := range options {
		if err := opt(srvc); err != nil {
			return err
		}
	}
	return nil
}

//
// set a human-readable name for this service instance,
// one is generated if blank
//
func Name(name string) Option {
	return func(s *GradeSyncService) error {
		if name != "" {
			s.serviceName = name
			return nil
		}
		s.serviceName = util.GenerateName()
		return nil
	}
}

//
// set the unique id for this service instance,
// one is generated if blank
//
func ID(id string) Option {
	return func(s *GradeSyncService) error {
		if id != "" {
			s.serviceID = id
			return nil
		}
		s.serviceID = util.GenerateID()
		return nil
	}
}

func Host(hostName string) Option {
	return func(s *GradeSyncService) error {
		if hostName == "" {
			return errors.New("must have a valid host name")
		}
		s.serviceHost = hostName
		return nil
	}
}

//
// set the port the service listens on,
// an available port is found if 0
//
func Port(port int) Option {
	return func(s *GradeSyncService) error {
		if port != 0 {
			s.servicePort = port
			return nil
		}
		p, err := util.AvailablePort()
		if err != nil {
			return err
		}
		s.servicePort = p
		return nil
	}
}

//
// address of the canvas instance grading standards are read from
//
func CanvasURL(url string) Option {
	return func(s *GradeSyncService) error {
		if url == "" {
			return errors.New("must supply a canvas url")
		}
		s.canvasURL = url
		return nil
	}
}

func CanvasToken(token string) Option {
	return func(s *GradeSyncService) error {
		s.canvasToken = token
		return nil
	}
}

func CanvasTimeout(d time.Duration) Option {
	return func(s *GradeSyncService) error {
		s.canvasTimeout = d
		return nil
	}
}

//
// use a specific source for remote lookups instead of
// the canvas rest client, mostly for testing
//
func Fetcher(f resolver.Fetcher) Option {
	return func(s *GradeSyncService) error {
		s.fetcher = f
		return nil
	}
}

//
// how long an idle picker session is kept
//
func SessionTTL(d time.Duration) Option {
	return func(s *GradeSyncService) error {
		if d <= 0 {
			return errors.New("session ttl must be positive")
		}
		s.sessionTTL = d
		return nil
	}
}

// default locale for reading score text when a session does not name one
func Locale(lang string) Option {
	return func(s *GradeSyncService) error {
		s.locale = lang
		return nil
	}
}

//
// picker defaults, individual sessions may override them
//
func PickerDefaults(alwaysOpenOnFocus, fitOptions, letterShortcut bool, letterPattern string) Option {
	return func(s *GradeSyncService) error {
		re, err := gradesync.CompileLetterPattern(letterPattern)
		if err != nil {
			return err
		}
		s.defaults = gradesync.Config{
			AlwaysOpenOnFocus: alwaysOpenOnFocus,
			FitOptions:        fitOptions,
			LetterShortcut:    letterShortcut,
			LetterPattern:     re,
		}
		return nil
	}
}

//
// set the log level, one of debug|info|warn|error
//
func LogLevel(level string) Option {
	return func(s *GradeSyncService) error {
		lvl, err := parseLevel(level)
		if err != nil {
			return err
		}
		s.logLevel = lvl
		return nil
	}
}
