package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
)

// writeHeaders writes one "Key: Value" line per header value, keys sorted.
func writeHeaders(out *strings.Builder, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(out, "%s: %s\n", k, v)
		}
	}
}

// requestBody is empty for requests without a body, GET requests made by
// resty have a GetBody that yields nil.
func requestBody(req *http.Request) string {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	if body == nil {
		return ""
	}
	defer body.Close()
	contents, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return string(contents)
}

// formatExchange renders a fetched page with the request that produced
// it. The response url is the one after redirects.
func formatExchange(res *resty.Response) string {
	var out strings.Builder

	out.WriteString("---- REQUEST ----\n\n")
	fmt.Fprintf(&out, "%s %s\n\n", res.Request.Method, res.Request.URL)
	if res.Request.RawRequest != nil {
		writeHeaders(&out, res.Request.RawRequest.Header)
		out.WriteString("\n")
		out.WriteString(requestBody(res.Request.RawRequest))
		out.WriteString("\n")
	}

	out.WriteString("\n---- RESPONSE ----\n\n")
	responseUrl := res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		responseUrl = res.RawResponse.Request.URL.String()
	}
	fmt.Fprintf(&out, "%d %s\n\n", res.StatusCode(), responseUrl)
	writeHeaders(&out, res.Header())
	out.WriteString("\n")
	out.Write(res.Body())

	return out.String()
}
