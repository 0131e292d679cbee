package parsers

import (
	"bufio"
	"net/url"
	"strings"

	logpkg "github.com/haukened/rr-ruleset/internal/ruleset/common/log"
	"github.com/haukened/rr-ruleset/internal/ruleset/domain"
)

// ExtractHosts parses a newline-delimited list of URLs and returns one result per
// non-empty line, in input order.
//
// Behavior:
// - Handles both "\n" and "\r\n" line endings
// - Trims surrounding whitespace and a leading BOM; skips lines that end up empty
// - Parses each line with net/url and takes the authority (host[:port], userinfo excluded)
// - Lines net/url rejects (bad port, odd host characters) fall back to reading the
//   authority between "scheme://" and the first "/", "?" or "#"
// - Drops the port by cutting at the first colon; bracketed IPv6 literals keep the
//   address instead of yielding "[" as plain first-colon splitting would
// - Emits a ParseWarning instead of a host when parsing fails or no authority is present
// - No de-duplication, sorting or case folding
//
// Warnings are returned to the caller rather than logged here; the logger only
// receives debug trace entries.
func ExtractHosts(text string, logger logpkg.Logger) []domain.ExtractResult {
	scanner := bufio.NewScanner(strings.NewReader(text))
	// Size the buffer to the input so no single line can exceed the token limit.
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)

	out := make([]domain.ExtractResult, 0, strings.Count(text, "\n")+1)
	logger.Debug(map[string]any{"bytes": len(text)}, "extract_hosts_start")

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\uFEFF"))
		if line == "" {
			logger.Debug(map[string]any{"line": lineNum}, "skip_empty")
			continue
		}

		host, err := hostFromURL(line)
		if err != nil {
			out = append(out, domain.ExtractResult{
				Line:    lineNum,
				Warning: &domain.ParseWarning{Line: lineNum, Raw: line, Kind: domain.WarningMalformed, Err: err},
			})
			logger.Debug(map[string]any{"line": lineNum, "raw": line, "error": err.Error()}, "skip_malformed")
			continue
		}
		if host == "" {
			out = append(out, domain.ExtractResult{
				Line:    lineNum,
				Warning: &domain.ParseWarning{Line: lineNum, Raw: line, Kind: domain.WarningNoHost, Err: domain.ErrNoHost},
			})
			logger.Debug(map[string]any{"line": lineNum, "raw": line}, "skip_no_host")
			continue
		}

		out = append(out, domain.ExtractResult{Line: lineNum, Host: host})
		logger.Debug(map[string]any{"line": lineNum, "host": host}, "emit_host")
	}

	logger.Debug(map[string]any{"lines": lineNum, "results": len(out)}, "extract_hosts_done")
	return out
}

// Partition splits results into the ordered hostnames and the ordered warnings.
// The returned host slice is never nil.
func Partition(results []domain.ExtractResult) ([]string, []domain.ParseWarning) {
	hosts := make([]string, 0, len(results))
	var warnings []domain.ParseWarning
	for _, r := range results {
		if r.Warning != nil {
			warnings = append(warnings, *r.Warning)
			continue
		}
		if r.OK() {
			hosts = append(hosts, r.Host)
		}
	}
	return hosts, warnings
}

// hostFromURL parses raw as a URL and returns its host with any port removed.
// An empty host with a nil error means the URL has no authority component.
func hostFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		if host := rawAuthorityHost(raw); host != "" {
			return host, nil
		}
		return "", err
	}
	return stripPort(u.Host), nil
}

// rawAuthorityHost reads the host out of "scheme://authority..." or
// "//authority..." without validating the port or host characters.
// It returns "" when no host can be found.
func rawAuthorityHost(raw string) string {
	rest, ok := strings.CutPrefix(raw, "//")
	if !ok {
		var scheme string
		scheme, rest, ok = strings.Cut(raw, "://")
		if !ok || !validScheme(scheme) {
			return ""
		}
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndexByte(rest, '@'); i >= 0 {
		rest = rest[i+1:]
	}
	host := stripPort(rest)
	if strings.ContainsAny(host, "[]") {
		return ""
	}
	return host
}

// validScheme reports whether s matches ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// stripPort removes a ":port" suffix from an authority.
// For "[v6addr]:port" the address between the brackets is returned.
func stripPort(authority string) string {
	if strings.HasPrefix(authority, "[") {
		if end := strings.IndexByte(authority, ']'); end > 0 {
			return authority[1:end]
		}
	}
	host, _, _ := strings.Cut(authority, ":")
	return host
}
