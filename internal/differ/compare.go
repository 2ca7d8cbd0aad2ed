package differ

import (
	"fmt"
	"strings"

	"github.com/yousuf/specforge-mcp/internal/ir"
	"github.com/yousuf/specforge-mcp/internal/mapper"
	"github.com/yousuf/specforge-mcp/internal/openapi"
)

// CompareError signals that one side of a version comparison failed to
// parse. A diff without two valid IRs is meaningless, so there are no
// partial-diff semantics: the whole comparison fails.
type CompareError struct {
	Side   string // "old" or "new"
	Errors []openapi.Error
}

func (e *CompareError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s spec is invalid: %s", e.Side, strings.Join(msgs, "; "))
}

// CompareSpecs parses both raw specs, maps them, and diffs the results.
// A parse failure on either side aborts with a *CompareError carrying the
// structural error list.
func CompareSpecs(oldRaw, newRaw string) (VersionDiff, error) {
	oldCfg, err := parseAndMap(oldRaw, "old")
	if err != nil {
		return VersionDiff{}, err
	}
	newCfg, err := parseAndMap(newRaw, "new")
	if err != nil {
		return VersionDiff{}, err
	}
	return Diff(oldCfg, newCfg), nil
}

func parseAndMap(raw, side string) (ir.ServerConfig, error) {
	res := openapi.Parse(raw)
	if !res.Success() {
		return ir.ServerConfig{}, &CompareError{Side: side, Errors: res.Errors}
	}
	return mapper.Map(res.Spec), nil
}
