package twitter

import (
	"bytes"
	"strconv"
	"strings"
)

// TweetRecord is the normalized shape every raw upstream result is flattened
// into. Base fields are set by the fetch client; cleaned text, language and
// sentiment are filled in later by the cleaner and the classifier.
type TweetRecord struct {
	ID             string  `json:"id"`
	Text           string  `json:"text"`
	CleanedText    string  `json:"cleaned_text,omitempty"`
	Timestamp      string  `json:"timestamp,omitempty"`
	FavoriteCount  int     `json:"favorite_count"`
	RetweetCount   int     `json:"retweet_count"`
	ReplyCount     int     `json:"reply_count"`
	QuoteCount     int     `json:"quote_count"`
	Views          int     `json:"views"`
	UserFollowers  int     `json:"user_followers"`
	UserName       string  `json:"user_name"`
	UserUsername   string  `json:"user_username"`
	OriginalLang   string  `json:"original_lang,omitempty"`
	Sentiment      string  `json:"sentiment,omitempty"`
	SentimentScore float64 `json:"sentiment_score,omitempty"`
}

// flexInt tolerates upstream counts arriving as numbers, numeric strings or
// null. Anything unparseable decodes to zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(int(n))
	return nil
}

// flexString tolerates ids arriving as strings or bare numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	*f = flexString(strings.Trim(string(data), `"`))
	return nil
}

type rawUser struct {
	FollowerCount flexInt `json:"follower_count"`
	Name          string  `json:"name"`
	Username      string  `json:"username"`
}

type rawTweet struct {
	TweetID       flexString `json:"tweet_id"`
	TweetText     string     `json:"tweet_text"`
	Text          string     `json:"text"`
	CreationDate  string     `json:"creation_date"`
	FavoriteCount flexInt    `json:"favorite_count"`
	RetweetCount  flexInt    `json:"retweet_count"`
	ReplyCount    flexInt    `json:"reply_count"`
	QuoteCount    flexInt    `json:"quote_count"`
	Views         flexInt    `json:"views"`
	User          rawUser    `json:"user"`
}

func (r rawTweet) normalize() TweetRecord {
	text := r.TweetText
	if text == "" {
		text = r.Text
	}
	return TweetRecord{
		ID:            string(r.TweetID),
		Text:          text,
		Timestamp:     r.CreationDate,
		FavoriteCount: int(r.FavoriteCount),
		RetweetCount:  int(r.RetweetCount),
		ReplyCount:    int(r.ReplyCount),
		QuoteCount:    int(r.QuoteCount),
		Views:         int(r.Views),
		UserFollowers: int(r.User.FollowerCount),
		UserName:      r.User.Name,
		UserUsername:  r.User.Username,
	}
}

type searchResponse struct {
	Results           []rawTweet `json:"results"`
	ContinuationToken string     `json:"continuation_token"`
}

// Trend is one entry of the upstream trends endpoint, ranked by position.
type Trend struct {
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	TweetVolume     int     `json:"tweet_volume"`
	Rank            int     `json:"rank"`
	Query           string  `json:"query"`
	PromotedContent *string `json:"promoted_content"`
}

type rawTrend struct {
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	TweetVolume     flexInt `json:"tweet_volume"`
	Query           string  `json:"query"`
	PromotedContent *string `json:"promoted_content"`
}

type trendsResponse []struct {
	Trends []rawTrend `json:"trends"`
}
