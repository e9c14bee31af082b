package service

import "testing"

func TestClassifyCommunityPost(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"my network keeps dropping", CategoryNetworkConnectivity},
		{"constant disconnects at home", CategoryNetworkConnectivity},
		{"5g download speeds are amazing", CategoryDataSpeed},
		{"lte is fine but upload is slow", CategoryDataSpeed},
		{"zero bars in my basement", CategorySignalStrength},
		{"the whole town is a dead zone", CategorySignalStrength},
		{"customer service hung up on me", CategoryCustomerService},
		{"my bill went up again", CategoryPlanBilling},
		{"switching to the cheaper plan", CategoryPlanBilling},
		{"anyone else watch the game last night", CategoryGeneral},
		{"", CategoryGeneral},
	}

	for _, tt := range tests {
		if got := ClassifyCommunityPost(tt.text); got != tt.want {
			t.Errorf("ClassifyCommunityPost(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestClassifyCommunityPostRuleOrder(t *testing.T) {
	// "signal" appears in both the connectivity and signal-strength rules;
	// the earlier rule wins.
	if got := ClassifyCommunityPost("weak signal everywhere"); got != CategoryNetworkConnectivity {
		t.Errorf("got %q, want %q", got, CategoryNetworkConnectivity)
	}
}

func TestClassifyStoreReview(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"no signal after the update to 5g", CategoryNetworkConnectivity},
		{"they charge hidden fees", CategoryBillingPricing},
		{"way too expensive", CategoryBillingPricing},
		{"support staff was rude", CategoryCustomerService},
		{"app crashes on login", CategoryAppFunctionality},
		{"the new interface is confusing", CategoryAppFunctionality},
		{"unlimited contract was a lie", CategoryPlansFeatures},
		{"meh", CategoryGeneral},
		{"", CategoryGeneral},
	}

	for _, tt := range tests {
		if got := ClassifyStoreReview(tt.text); got != tt.want {
			t.Errorf("ClassifyStoreReview(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestSentimentFromRating(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{5, SentimentPositive},
		{4, SentimentPositive},
		{3, SentimentNeutral},
		{2, SentimentNegative},
		{1, SentimentNegative},
		{0, SentimentNegative},
	}

	for _, tt := range tests {
		if got := SentimentFromRating(tt.rating); got != tt.want {
			t.Errorf("SentimentFromRating(%d) = %q, want %q", tt.rating, got, tt.want)
		}
	}
}
