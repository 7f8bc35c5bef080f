package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseRecord extracts the class index from each non-empty line of one
// annotation record. The first whitespace-delimited token of a line is the
// class index; the remaining tokens are geometry and are not inspected.
// A non-numeric or negative class token is a *ParseError.
func ParseRecord(data []byte, name string) ([]ClassID, error) {
	var classes []ClassID

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		token := strings.Fields(line)[0]
		id, err := strconv.Atoi(token)
		if err != nil {
			return nil, &ParseError{File: name, Line: lineNo, Err: fmt.Errorf("class token %q is not an integer", token)}
		}
		if id < 0 {
			return nil, &ParseError{File: name, Line: lineNo, Err: fmt.Errorf("class index %d is negative", id)}
		}
		classes = append(classes, ClassID(id))
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{File: name, Err: err}
	}

	return classes, nil
}

// Representative reduces a record's class list to the single label used for
// stratification: the statistical mode of the classes, or ClassEmpty for a
// record with no objects. Ties are broken toward the lowest class index so
// the result does not depend on line order.
func Representative(classes []ClassID) ClassID {
	if len(classes) == 0 {
		return ClassEmpty
	}

	sorted := make([]ClassID, len(classes))
	copy(sorted, classes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// Longest run over the sorted copy. The strict comparison keeps the
	// first, i.e. lowest, class on a tie.
	mode := sorted[0]
	best := 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > best {
			mode, best = sorted[i], j-i
		}
		i = j
	}
	return mode
}
