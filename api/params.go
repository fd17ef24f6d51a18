package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightdata/internal/domain"
	"github.com/gin-gonic/gin"
)

const defaultPageSize = 20

// parsePageRequest reads page, size and sort. paged reports whether page or
// size was given at all.
func parsePageRequest(c *gin.Context) (domain.PageRequest, bool, error) {
	sort, err := parseSort(c.QueryArray("sort"))
	if err != nil {
		return domain.PageRequest{}, false, err
	}
	req := domain.PageRequest{Size: defaultPageSize, Sort: sort}

	pageParam, hasPage := c.GetQuery("page")
	sizeParam, hasSize := c.GetQuery("size")
	if hasPage {
		if req.Page, err = strconv.Atoi(pageParam); err != nil {
			return domain.PageRequest{}, false, fmt.Errorf("invalid page %q", pageParam)
		}
	}
	if hasSize {
		if req.Size, err = strconv.Atoi(sizeParam); err != nil {
			return domain.PageRequest{}, false, fmt.Errorf("invalid size %q", sizeParam)
		}
	}
	return req, hasPage || hasSize, nil
}

// parseSort accepts repeated "property[,asc|desc]" values.
func parseSort(values []string) (domain.Sort, error) {
	var sort domain.Sort
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		property, dir, _ := strings.Cut(v, ",")
		direction, err := domain.ParseDirection(dir)
		if err != nil {
			return nil, err
		}
		sort = append(sort, domain.Order{Property: strings.TrimSpace(property), Direction: direction})
	}
	return sort, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}
