package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	otfgs "github.com/nsip/otf-gradesync"
	"github.com/peterbourgon/ff/v3"
)

func main() {

	// optional .env alongside the binary, real env vars win
	_ = godotenv.Load()

	fs := flag.NewFlagSet("otf-gradesync", flag.ExitOnError)
	var (
		_                 = fs.String("config", "", "config file (optional), json format.")
		serviceName       = fs.String("name", "", "name for this service instance")
		serviceID         = fs.String("id", "", "id for this service instance, leave blank to auto-generate a unique id")
		serviceHost       = fs.String("host", "localhost", "name/address of host for this service")
		servicePort       = fs.Int("port", 0, "port to run service on, if not specified will assign an available port automatically")
		canvasURL         = fs.String("canvasURL", "", "base url of the canvas instance, e.g. https://school.instructure.com")
		canvasToken       = fs.String("canvasToken", "", "canvas api access token")
		canvasTimeout     = fs.Duration("canvasTimeout", 10*time.Second, "timeout for each canvas api call")
		sessionTTL        = fs.Duration("sessionTTL", 30*time.Minute, "how long an idle picker session is kept")
		locale            = fs.String("locale", "en", "default page language for reading score text")
		alwaysOpenOnFocus = fs.Bool("alwaysOpenOnFocus", false, "keep the letter list open while the grade input has focus")
		fitOptions        = fs.Bool("fitOptions", false, "size the letter list to show every option")
		letterShortcut    = fs.Bool("letterShortcut", false, "match typed letters against the letter extracted from each grade name")
		letterPattern     = fs.String("letterPattern", "", "pattern with capture groups used to extract letters from grade names")
		logLevel          = fs.String("logLevel", "info", "log level, one of debug|info|warn|error")
	)

	ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.JSONParser),
		ff.WithEnvVarPrefix("OTF_GRADESYNC"),
	)

	opts := []otfgs.Option{
		otfgs.LogLevel(*logLevel),
		otfgs.Name(*serviceName),
		otfgs.ID(*serviceID),
		otfgs.Host(*serviceHost),
		otfgs.Port(*servicePort),
		otfgs.CanvasURL(*canvasURL),
		otfgs.CanvasToken(*canvasToken),
		otfgs.CanvasTimeout(*canvasTimeout),
		otfgs.SessionTTL(*sessionTTL),
		otfgs.Locale(*locale),
		otfgs.PickerDefaults(*alwaysOpenOnFocus, *fitOptions, *letterShortcut, *letterPattern),
	}

	srvc, err := otfgs.New(opts...)
	if err != nil {
		fmt.Printf("\nCannot create otf-gradesync service:\n%s\n\n", err)
		return
	}

	srvc.PrintConfig()

	// signal handler for shutdown
	closed := make(chan struct{})
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		fmt.Println("\notf-gradesync shutting down")
		srvc.Shutdown()
		fmt.Println("otf-gradesync closed")
		close(closed)
	}()

	srvc.Start()

	// block until shutdown by sig-handler
	<-closed

}
