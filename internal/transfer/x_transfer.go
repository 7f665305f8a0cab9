package transfer

type XTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
}

type XUserInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

type XUserResponse struct {
	Data XUserInfo `json:"data"`
}

type TweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type TweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

type TweetRequest struct {
	Text  string      `json:"text"`
	Media *TweetMedia `json:"media,omitempty"`
	Reply *TweetReply `json:"reply,omitempty"`
}

type TweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}
