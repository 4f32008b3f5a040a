// Package httpapi is the htsget ticket HTTP front end: it turns a
// fasthttp request into an htsget.Query, resolves the client id to a
// storage key, runs it through the core dispatcher, and writes the
// resulting ticket back as `{"htsget": ...}` JSON. Everything CORS/TLS/
// Lambda-adjacent is left to whatever reverse proxy fronts this
// process.
package httpapi

import (
	"context"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"k8s.io/klog/v2"

	"github.com/htsget-io/htsget-server/herr"
	"github.com/htsget-io/htsget-server/htsget"
	"github.com/htsget-io/htsget-server/idresolver"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// IDResolver maps a client-visible id to a storage key. Satisfied by
// *idresolver.Resolver; kept as an interface so tests can stub it.
type IDResolver interface {
	Resolve(id string) (string, bool)
}

// MetricsRecorder is the subset of the server's metrics the HTTP layer
// updates per request. Kept as an interface so httpapi has no direct
// dependency on the root package's prometheus vars.
type MetricsRecorder interface {
	ObserveRequest(format, class string)
	ObserveError(kind string)
	ObserveDuration(format string, d time.Duration)
}

// Server wires a Dispatcher and an IDResolver into fasthttp handlers.
type Server struct {
	Dispatcher *htsget.Dispatcher
	Resolver   IDResolver
	Metrics    MetricsRecorder
}

// NewServer builds a Server. metrics may be nil to disable recording.
func NewServer(dispatcher *htsget.Dispatcher, resolver *idresolver.Resolver, metrics MetricsRecorder) *Server {
	return &Server{Dispatcher: dispatcher, Resolver: resolver, Metrics: metrics}
}

// Handler returns the single fasthttp entry point routing every request
// this server understands.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())
		switch {
		case strings.HasSuffix(path, "/service-info"):
			s.handleServiceInfo(ctx, path)
		case strings.HasPrefix(path, "/reads/"):
			s.handleTicket(ctx, strings.TrimPrefix(path, "/reads/"), htsget.FormatBAM)
		case strings.HasPrefix(path, "/variants/"):
			s.handleTicket(ctx, strings.TrimPrefix(path, "/variants/"), htsget.FormatVCF)
		default:
			replyJSON(ctx, fasthttp.StatusNotFound, errorBody("NotFound", "no route for "+path))
		}
	}
}

func (s *Server) handleTicket(ctx *fasthttp.RequestCtx, id string, defaultFormat htsget.Format) {
	startedAt := time.Now()
	query, err := parseQuery(ctx, id, defaultFormat)
	if err != nil {
		s.recordError(herr.KindInvalidInput.String())
		replyJSON(ctx, fasthttp.StatusBadRequest, errorBody("InvalidInput", err.Error()))
		return
	}

	key, ok := s.Resolver.Resolve(query.ID)
	if !ok {
		s.recordError(herr.KindNotFound.String())
		replyJSON(ctx, fasthttp.StatusNotFound, errorBody("NotFound", "no match for id "+query.ID))
		return
	}

	resp, err := s.Dispatcher.Resolve(context.Background(), key, query)
	if s.Metrics != nil {
		s.Metrics.ObserveDuration(query.Format.String(), time.Since(startedAt))
	}
	if err != nil {
		kind := herr.KindOf(err)
		s.recordError(kind.String())
		klog.Errorf("resolve %q: %v", query.ID, err)
		replyJSON(ctx, kind.HTTPStatus(), errorBody(kind.String(), err.Error()))
		return
	}

	s.recordRequest(query.Format.String(), query.Class.String())
	replyJSON(ctx, fasthttp.StatusOK, map[string]*htsget.Response{"htsget": resp})
}

func (s *Server) handleServiceInfo(ctx *fasthttp.RequestCtx, path string) {
	formats := []string{"BAM", "CRAM"}
	if strings.HasPrefix(path, "/variants/") {
		formats = []string{"VCF", "BCF"}
	}
	replyJSON(ctx, fasthttp.StatusOK, serviceInfo{
		Type: serviceInfoType{
			Group:   "org.ga4gh",
			Artifact: "htsget",
			Version: "1.3.0",
		},
		Htsget: serviceInfoHtsget{
			Datatype:          datatypeFor(formats),
			Formats:           formats,
			FieldsParameterEffective: false,
			TagsParametersEffective:  false,
		},
	})
}

func datatypeFor(formats []string) string {
	if formats[0] == "VCF" {
		return "variants"
	}
	return "reads"
}

type serviceInfoType struct {
	Group    string `json:"group"`
	Artifact string `json:"artifact"`
	Version  string `json:"version"`
}

type serviceInfoHtsget struct {
	Datatype                 string   `json:"datatype"`
	Formats                  []string `json:"formats"`
	FieldsParameterEffective bool     `json:"fieldsParameterEffective"`
	TagsParametersEffective  bool     `json:"tagsParametersEffective"`
}

type serviceInfo struct {
	Type   serviceInfoType   `json:"type"`
	Htsget serviceInfoHtsget `json:"htsget"`
}

func errorBody(kind, message string) map[string]any {
	return map[string]any{
		"htsget": map[string]string{
			"error":   kind,
			"message": message,
		},
	}
}

func (s *Server) recordRequest(format, class string) {
	if s.Metrics != nil {
		s.Metrics.ObserveRequest(format, class)
	}
}

func (s *Server) recordError(kind string) {
	if s.Metrics != nil {
		s.Metrics.ObserveError(kind)
	}
}

func replyJSON(ctx *fasthttp.RequestCtx, code int, v any) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(code)
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		klog.Errorf("httpapi: failed to marshal response: %v", err)
	}
}

// parseQuery builds an htsget.Query from a GET request's query-string
// parameters, or from a POST request's JSON body (the htsget spec's two
// equivalent request forms).
func parseQuery(ctx *fasthttp.RequestCtx, id string, defaultFormat htsget.Format) (htsget.Query, error) {
	if ctx.IsPost() {
		return parseQueryFromBody(ctx.PostBody(), id, defaultFormat)
	}
	return parseQueryFromArgs(ctx.QueryArgs(), id, defaultFormat)
}

type jsonRegion struct {
	ReferenceName *string `json:"referenceName"`
	Start         *uint32 `json:"start"`
	End           *uint32 `json:"end"`
}

type jsonRequest struct {
	Format  string       `json:"format"`
	Class   string       `json:"class"`
	Fields  []string     `json:"fields"`
	Tags    []string     `json:"tags"`
	NoTags  []string     `json:"notags"`
	Regions []jsonRegion `json:"regions"`
}

func parseQueryFromBody(body []byte, id string, defaultFormat htsget.Format) (htsget.Query, error) {
	var req jsonRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return htsget.Query{}, err
		}
	}
	q := htsget.Query{ID: id, Format: defaultFormat, Fields: req.Fields, Tags: req.Tags, NoTags: req.NoTags}
	if req.Format != "" {
		f, err := parseFormat(req.Format)
		if err != nil {
			return htsget.Query{}, err
		}
		q.Format = f
	}
	if req.Class != "" {
		c, err := parseClass(req.Class)
		if err != nil {
			return htsget.Query{}, err
		}
		q.Class = c
	}
	if len(req.Regions) > 0 {
		r := req.Regions[0]
		q.ReferenceName = r.ReferenceName
		q.Interval = htsget.Interval{Start: r.Start, End: r.End}
	}
	return q, nil
}

func parseQueryFromArgs(args *fasthttp.Args, id string, defaultFormat htsget.Format) (htsget.Query, error) {
	q := htsget.Query{ID: id, Format: defaultFormat}

	if v := string(args.Peek("format")); v != "" {
		f, err := parseFormat(v)
		if err != nil {
			return q, err
		}
		q.Format = f
	}
	if v := string(args.Peek("class")); v != "" {
		c, err := parseClass(v)
		if err != nil {
			return q, err
		}
		q.Class = c
	}
	if v := string(args.Peek("referenceName")); v != "" {
		q.ReferenceName = &v
	}
	if v := args.Peek("start"); v != nil {
		n, err := strconv.ParseUint(string(v), 10, 32)
		if err != nil {
			return q, err
		}
		u := uint32(n)
		q.Interval.Start = &u
	}
	if v := args.Peek("end"); v != nil {
		n, err := strconv.ParseUint(string(v), 10, 32)
		if err != nil {
			return q, err
		}
		u := uint32(n)
		q.Interval.End = &u
	}
	if v := string(args.Peek("fields")); v != "" {
		q.Fields = strings.Split(v, ",")
	}
	if v := string(args.Peek("tags")); v != "" {
		q.Tags = strings.Split(v, ",")
	}
	if v := string(args.Peek("notags")); v != "" {
		q.NoTags = strings.Split(v, ",")
	}
	return q, nil
}

func parseFormat(v string) (htsget.Format, error) {
	switch strings.ToUpper(v) {
	case "BAM":
		return htsget.FormatBAM, nil
	case "CRAM":
		return htsget.FormatCRAM, nil
	case "VCF":
		return htsget.FormatVCF, nil
	case "BCF":
		return htsget.FormatBCF, nil
	default:
		return 0, herr.InvalidInput("parseFormat", errUnsupportedFormat(v))
	}
}

func parseClass(v string) (htsget.Class, error) {
	switch strings.ToLower(v) {
	case "header":
		return htsget.ClassHeader, nil
	case "body":
		return htsget.ClassBody, nil
	default:
		return 0, herr.InvalidInput("parseClass", errUnsupportedClass(v))
	}
}

type errUnsupportedFormat string

func (e errUnsupportedFormat) Error() string { return "unsupported format " + string(e) }

type errUnsupportedClass string

func (e errUnsupportedClass) Error() string { return "unsupported class " + string(e) }
