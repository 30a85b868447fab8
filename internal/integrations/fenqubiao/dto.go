package fenqubiao

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexString принимает и строку, и число: каталог отдаёт разделы и IF в обоих видах.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string { return string(f) }

func (f flexString) Float() *float64 {
	if f == "" {
		return nil
	}
	v, err := strconv.ParseFloat(string(f), 64)
	if err != nil {
		return nil
	}
	return &v
}

// JournalDTO - запись каталога; у части полей есть альтернативные имена.
type JournalDTO struct {
	ID                flexString `json:"id"`
	JournalID         flexString `json:"journal_id"`
	Name              string     `json:"name"`
	JournalName       string     `json:"journal_name"`
	ISSN              string     `json:"issn"`
	EISSN             string     `json:"eissn"`
	Publisher         string     `json:"publisher"`
	SubjectCategories string     `json:"subject_categories"`
	Categories        string     `json:"categories"`
	Partition2023     flexString `json:"partition_2023"`
	Partition2022     flexString `json:"partition_2022"`
	Partition2021     flexString `json:"partition_2021"`
	Year2023          flexString `json:"2023"`
	Year2022          flexString `json:"2022"`
	Year2021          flexString `json:"2021"`
	ImpactFactor      flexString `json:"impact_factor"`
	IF2022            flexString `json:"if_2022"`
}

type searchResponse struct {
	Success bool         `json:"success"`
	Data    []JournalDTO `json:"data"`
	Total   uint64       `json:"total"`
}

type detailResponse struct {
	Success bool        `json:"success"`
	Data    *JournalDTO `json:"data"`
}
