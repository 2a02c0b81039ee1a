package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	OutputPNG  = "png"
	OutputJPEG = "jpeg"
	OutputHTML = "html"
)

type OutputFormat string

type Config struct {
	DBPath        string
	SessionID     int64
	OutputFile    string
	Format        OutputFormat
	TraceChannel  string
	StartTime     *float64
	EndTime       *float64
	Verbose       bool
	NoAnnotations bool
}

var validOutputFormats = map[OutputFormat]struct{}{
	OutputPNG:  {},
	OutputJPEG: {},
	OutputHTML: {},
}

func NewConfig() *Config {
	return &Config{
		Format:       OutputPNG,
		TraceChannel: "C3",
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var outputFormat string
	var startTime, endTime float64
	flag.StringVar(&c.DBPath, "db", "", "Path to the database file")
	flag.Int64Var(&c.SessionID, "s", 1, "Session ID")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&outputFormat, "f", string(OutputPNG), "Output format. [png, jpeg, html]")
	flag.StringVar(&c.TraceChannel, "channel", c.TraceChannel, "Channel to draw as the signal trace")
	flag.Float64Var(&startTime, "start", 0, "Start of the rendered time range in seconds")
	flag.Float64Var(&endTime, "end", 0, "End of the rendered time range in seconds")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as the time scale and info bar")
	flag.Parse()

	outputFormat = strings.ToLower(outputFormat)

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "start" {
			c.StartTime = &startTime
		}
		if f.Name == "end" {
			c.EndTime = &endTime
		}
	})

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validOutputFormats[OutputFormat(outputFormat)]; !ok {
		err = fmt.Errorf("invalid output format: %s", outputFormat)
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = OutputFormat(outputFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
