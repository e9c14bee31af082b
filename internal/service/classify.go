package service

import "strings"

// Category and sentiment labels produced by the keyword classifiers.
const (
	CategoryNetworkConnectivity = "network_connectivity"
	CategoryDataSpeed           = "data_speed"
	CategorySignalStrength      = "signal_strength"
	CategoryCustomerService     = "customer_service"
	CategoryPlanBilling         = "plan_billing"
	CategoryBillingPricing      = "billing_pricing"
	CategoryAppFunctionality    = "app_functionality"
	CategoryPlansFeatures       = "plans_features"
	CategoryGeneral             = "general"

	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// keyword rule sets, checked in order. First match wins.
var communityCategories = []struct {
	category string
	keywords []string
}{
	{CategoryNetworkConnectivity, []string{"network", "connection", "connectivity", "signal", "disconnect"}},
	{CategoryDataSpeed, []string{"5g", "5 g", "lte", "speed", "data", "download", "upload"}},
	{CategorySignalStrength, []string{"coverage", "signal", "bars", "dead zone", "no service"}},
	{CategoryCustomerService, []string{"customer service", "support", "help", "agent", "cs", "rep"}},
	{CategoryPlanBilling, []string{"bill", "price", "cost", "plan", "charge", "payment", "billing"}},
}

var reviewCategories = []struct {
	category string
	keywords []string
}{
	{CategoryNetworkConnectivity, []string{"network", "signal", "coverage", "data", "5g", "4g", "lte", "connection"}},
	{CategoryBillingPricing, []string{"bill", "charge", "price", "payment", "expensive", "cost", "fee"}},
	{CategoryCustomerService, []string{"support", "customer service", "representative", "agent", "help", "staff"}},
	{CategoryAppFunctionality, []string{"app", "crash", "bug", "update", "login", "interface", "feature"}},
	{CategoryPlansFeatures, []string{"plan", "unlimited", "upgrade", "switch", "contract"}},
}

func matchCategory(text string, rules []struct {
	category string
	keywords []string
}) string {
	t := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(t, kw) {
				return rule.category
			}
		}
	}
	return CategoryGeneral
}

// ClassifyCommunityPost categorizes a community discussion post.
func ClassifyCommunityPost(text string) string {
	return matchCategory(text, communityCategories)
}

// ClassifyStoreReview categorizes an app store review.
func ClassifyStoreReview(text string) string {
	if text == "" {
		return CategoryGeneral
	}
	return matchCategory(text, reviewCategories)
}

// SentimentFromRating maps a star rating to a sentiment label.
func SentimentFromRating(rating int) string {
	switch {
	case rating >= 4:
		return SentimentPositive
	case rating >= 3:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}
