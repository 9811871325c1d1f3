package recommend

import (
	"testing"

	"github.com/universeapp/universe/internal/models"
)

func TestIsColdStart(t *testing.T) {
	cases := []struct {
		name string
		p    models.Profile
		rp   *models.RoommateProfile
		want bool
	}{
		{
			name: "empty profile",
			p:    models.Profile{},
			want: true,
		},
		{
			name: "bio and major give two signals",
			p:    models.Profile{Bio: "I like systems programming", CourseMajor: "CS"},
			want: false,
		},
		{
			name: "single signal",
			p:    models.Profile{Bio: "I like systems programming"},
			want: true,
		},
		{
			name: "short bio does not count",
			p:    models.Profile{Bio: "hi", CourseMajor: "CS"},
			want: true,
		},
		{
			name: "whitespace padding does not count",
			p:    models.Profile{Bio: "   hi        ", Interests: "  a  "},
			want: true,
		},
		{
			name: "roommate profile is a signal",
			p:    models.Profile{CourseMajor: "Math"},
			rp:   &models.RoommateProfile{UserID: 1},
			want: false,
		},
		{
			name: "two character major does not count",
			p:    models.Profile{CourseMajor: "CS", Interests: "hiking books"},
			want: true,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsColdStart(&c.p, c.rp); got != c.want {
				t.Errorf("IsColdStart = %v, want %v", got, c.want)
			}
		})
	}
}

func TestPassesHousingFilter(t *testing.T) {
	rp := &models.RoommateProfile{MaxRentBudget: 1000}

	if passesHousingFilter(&models.Listing{IsAvailable: false, RentPrice: 500}, rp, 20) {
		t.Error("unavailable listing should fail")
	}
	if !passesHousingFilter(&models.Listing{IsAvailable: true, RentPrice: 1200}, rp, 20) {
		t.Error("listing at exactly 120% of budget should pass")
	}
	if passesHousingFilter(&models.Listing{IsAvailable: true, RentPrice: 1201}, rp, 20) {
		t.Error("listing above 120% of budget should fail")
	}
	if !passesHousingFilter(&models.Listing{IsAvailable: true, RentPrice: 5000}, nil, 20) {
		t.Error("no roommate profile means no budget cap")
	}
	noBudget := &models.RoommateProfile{MaxRentBudget: 0}
	if !passesHousingFilter(&models.Listing{IsAvailable: true, RentPrice: 5000}, noBudget, 20) {
		t.Error("zero budget means no budget cap")
	}
}

func TestPassesStudyGroupFilter(t *testing.T) {
	if passesStudyGroupFilter(&models.StudyGroup{IsActive: false}) {
		t.Error("inactive group should fail")
	}
	if passesStudyGroupFilter(&models.StudyGroup{IsActive: true, MaxMembers: 2, MemberCount: 2}) {
		t.Error("full group should fail")
	}
	if !passesStudyGroupFilter(&models.StudyGroup{IsActive: true, MaxMembers: 2, MemberCount: 1}) {
		t.Error("active group with room should pass")
	}
}
