package scoring

// Ratings holds the five 1-5 soft-skill dimensions of one evaluation.
type Ratings struct {
	Communication  float64
	Teamwork       float64
	Responsibility float64
	Cooperation    float64
	Adaptability   float64
}

// Evaluation is a rating submitted by RaterID about RateeID.
type Evaluation struct {
	RaterID string
	RateeID string
	Ratings Ratings
}

// CollaborationInput holds the two 0-100 averages to blend.
type CollaborationInput struct {
	Self    float64 `json:"self"`
	PeerAvg float64 `json:"peer_avg"`
}

// CollaborationResult is the blended collaboration sub-score.
type CollaborationResult struct {
	Self    float64 `json:"self"`
	PeerAvg float64 `json:"peer_avg"`
	Score   float64 `json:"score"`
}

// RatingAverage averages the five dimensions and rescales onto 0-100.
func RatingAverage(r Ratings) float64 {
	dims := [...]float64{r.Communication, r.Teamwork, r.Responsibility, r.Cooperation, r.Adaptability}
	var sum float64
	for _, d := range dims {
		sum += clamp(finite(d), 1, 5)
	}
	return (sum / float64(len(dims))) / 5 * 100
}

func averageOf(evals []Evaluation, self bool) float64 {
	var sum float64
	var n int
	for _, e := range evals {
		if (e.RaterID == e.RateeID) != self {
			continue
		}
		sum += RatingAverage(e.Ratings)
		n++
	}
	if n == 0 {
		return 0
	}
	return round2(sum / float64(n))
}

// PeerAverage averages evaluations written by other students.
func PeerAverage(evals []Evaluation) float64 {
	return averageOf(evals, false)
}

// SelfAverage averages self-evaluations.
func SelfAverage(evals []Evaluation) float64 {
	return averageOf(evals, true)
}

// ScoreCollaboration blends self and peer averages with the given weights.
func ScoreCollaboration(in CollaborationInput, w CollaborationWeights) CollaborationResult {
	self := clampPct(finite(in.Self))
	peer := clampPct(finite(in.PeerAvg))
	ws, wp := finite(w.Self), finite(w.Peer)
	if ws < 0 {
		ws = 0
	}
	if wp < 0 {
		wp = 0
	}
	if ws+wp == 0 {
		ws, wp = DefaultSelfWeight, DefaultPeerWeight
	}
	return CollaborationResult{
		Self:    self,
		PeerAvg: peer,
		Score:   round2(clampPct(ws*self + wp*peer)),
	}
}
