package leads

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sample data used when no real leads exist yet: the dashboard falls
// back to it and cmd/seed loads it into the database.

var sampleFirstNames = []string{
	"John", "Sarah", "Michael", "Emma", "David", "Lisa", "James", "Maria",
	"Robert", "Jennifer", "William", "Linda", "Richard", "Patricia",
	"Joseph", "Nancy", "Thomas", "Karen", "Charles", "Betty", "Daniel",
	"Helen", "Matthew", "Sandra", "Anthony", "Ashley", "Mark", "Donna",
	"Donald", "Carol", "Steven", "Michelle", "Paul", "Emily", "Andrew",
	"Amanda", "Joshua", "Melissa", "Kenneth", "Deborah", "Kevin",
	"Stephanie", "Brian", "Rebecca", "George", "Laura", "Edward",
	"Sharon", "Ronald", "Cynthia",
}

var sampleLastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson",
	"Martin", "Lee", "Thompson", "White", "Harris", "Clark", "Lewis",
	"Robinson", "Walker", "Young", "Allen", "King", "Wright", "Scott",
	"Torres", "Nguyen", "Hill", "Flores", "Green", "Adams", "Nelson",
	"Baker", "Hall", "Rivera", "Campbell", "Mitchell", "Carter",
	"Roberts",
}

// SampleSources are the channel labels used by generated leads.
var SampleSources = []string{
	"Website", "Referral", "LinkedIn", "Cold Call", "Email Campaign",
	"Facebook", "Instagram", "Twitter", "Google Ads", "Trade Show",
}

// GenerateSample builds n plausible leads spread over the trailing 90
// days, heavily skewed toward converted like a healthy demo funnel.
func GenerateSample(n int) []*Lead {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return generateSample(n, rng, time.Now().UTC())
}

func generateSample(n int, rng *rand.Rand, now time.Time) []*Lead {
	out := make([]*Lead, 0, n)
	for i := 0; i < n; i++ {
		first := sampleFirstNames[rng.Intn(len(sampleFirstNames))]
		last := sampleLastNames[rng.Intn(len(sampleLastNames))]

		var status Status
		switch roll := rng.Float64(); {
		case roll < 0.92:
			status = StatusConverted
		case roll < 0.97:
			status = StatusContacted
		case roll < 0.99:
			status = StatusNew
		default:
			status = StatusLost
		}

		createdAt := now.Add(-time.Duration(rng.Int63n(int64(90 * 24 * time.Hour))))
		out = append(out, &Lead{
			ID:    uuid.New().String(),
			Name:  first + " " + last,
			Email: fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			Phone: fmt.Sprintf("+1 %d-%d-%d",
				rng.Intn(900)+100, rng.Intn(900)+100, rng.Intn(9000)+1000),
			Source:    SampleSources[rng.Intn(len(SampleSources))],
			Message:   "Interested in learning more about your services.",
			Status:    status,
			Notes:     []Note{},
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		})
	}
	return out
}
