package domain

// FirstRating is the learner's perceived-difficulty rating at first
// exposure. It is only valid before a record has any review history.
type FirstRating string

const (
	FirstRatingHard   FirstRating = "HARD"
	FirstRatingMedium FirstRating = "MEDIUM"
	FirstRatingEasy   FirstRating = "EASY"
)

func (r FirstRating) String() string { return string(r) }

func (r FirstRating) IsValid() bool {
	switch r {
	case FirstRatingHard, FirstRatingMedium, FirstRatingEasy:
		return true
	}
	return false
}

// ReviewRating is the learner's recall quality on a subsequent review.
type ReviewRating string

const (
	ReviewRatingAgain ReviewRating = "AGAIN"
	ReviewRatingHard  ReviewRating = "HARD"
	ReviewRatingGood  ReviewRating = "GOOD"
)

func (r ReviewRating) String() string { return string(r) }

func (r ReviewRating) IsValid() bool {
	switch r {
	case ReviewRatingAgain, ReviewRatingHard, ReviewRatingGood:
		return true
	}
	return false
}
