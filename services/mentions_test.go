package services

import (
	"reflect"
	"testing"

	"github.com/LepeyevaEmiliya/projects/models"
)

func TestExtractMentions(t *testing.T) {
	members := []models.Member{
		{ID: "1", Name: "Ann"},
		{ID: "2", Name: "Ann Lee"},
		{ID: "3", Name: "bob"},
		{ID: "4", Name: "Zoë"},
	}

	tests := []struct {
		text string
		want []string
	}{
		{"hello @bob", []string{"3"}},
		{"@bob, @bob and @bob.", []string{"3"}},
		{"@Bob is not bob", nil},
		{"@bobby is someone else", nil},
		{"@bob_x has an underscore", nil},
		{"ping @Ann Lee please", []string{"2"}},
		{"ping @Ann please", []string{"1"}},
		{"@Ann Leeward", []string{"1"}},
		{"@Zoë!", []string{"4"}},
		{"@bob @Ann", []string{"3", "1"}},
		{"no mentions here", nil},
		{"trailing @", nil},
		{"mail bob@bob", []string{"3"}},
	}
	for _, tt := range tests {
		var got []string
		for _, m := range ExtractMentions(tt.text, members) {
			got = append(got, m.ID)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ExtractMentions(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
