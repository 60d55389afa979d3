package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

const (
	SearchPath = "/vacancies"
)

// SearchParams maps onto the /vacancies query string through the hhparam tag.
type SearchParams struct {
	Text        string   `hhparam:"text" mapstructure:"text"`
	Areas       []int    `hhparam:"area" mapstructure:"areas"`
	OrderBy     string   `hhparam:"order_by" mapstructure:"order-by"`
	SearchField string   `hhparam:"search_field" mapstructure:"search-field"`
	Schedules   []string `hhparam:"schedule" mapstructure:"schedules"`
	Experience  string   `hhparam:"experience" mapstructure:"experience"`
	PerPage     int      `hhparam:"per_page" mapstructure:"per-page"`
	Period      uint     `hhparam:"period" mapstructure:"period"`
}

// Search returns at most limit vacancies matching params. limit <= 0 fetches
// every page the client is allowed to.
func (c *Client) Search(ctx context.Context, params SearchParams, limit int) ([]*Vacancy, error) {
	if params.PerPage == 0 {
		params.PerPage = perPage
	}
	if limit > 0 && limit < params.PerPage {
		params.PerPage = limit
	}

	items, err := c.GetItems(ctx, c.APIURL+SearchPath, buildParams(params), limit)
	if err != nil {
		return nil, fmt.Errorf("search vacancies: %w", err)
	}

	vacancies, err := decodeVacancies(items)
	if err != nil {
		return nil, err
	}

	return vacancies, nil
}

func decodeVacancies(items []Item) ([]*Vacancy, error) {
	var vacancies []*Vacancy

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &vacancies,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode vacancies: %w", err)
	}

	return vacancies, nil
}

func buildParams(params SearchParams) url.Values {
	q := url.Values{}
	v := reflect.ValueOf(params)

	for _, field := range reflect.VisibleFields(v.Type()) {
		key := field.Tag.Get("hhparam")
		if key == "" {
			continue
		}

		switch values := v.FieldByIndex(field.Index).Interface().(type) {
		case []int:
			for _, value := range values {
				q.Add(key, strconv.Itoa(value))
			}
		case []string:
			for _, value := range values {
				q.Add(key, value)
			}
		default:
			value := fmt.Sprintf("%v", values)
			if value != "" && value != "0" {
				q.Set(key, value)
			}
		}
	}

	return q
}
