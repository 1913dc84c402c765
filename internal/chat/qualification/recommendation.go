package qualification

// RecommendationMessage returns the advisor hand-off copy for a tier.
// Used once the flow completes to steer the close of the conversation.
func RecommendationMessage(tier Tier) string {
	switch tier {
	case TierHighValue:
		return "Based on our conversation, I believe you'd benefit greatly from a personalized " +
			"retirement income strategy. I'd love to connect you with one of our senior advisors " +
			"who specializes in clients in your situation. They can provide a complimentary " +
			"retirement readiness assessment and show you guaranteed income solutions."
	case TierQualified:
		return "Thanks for sharing that information! You're in a great position to benefit from " +
			"our retirement planning services. I'd recommend speaking with one of our advisors " +
			"who can review your specific situation and show you strategies to optimize your " +
			"retirement income."
	case TierWarm:
		return "I appreciate you taking the time to chat! While you're still in the planning stages, " +
			"it's never too early to start thinking about guaranteed income strategies. Would you " +
			"like to schedule a brief consultation to learn more about your options?"
	default:
		return "Thanks for reaching out! We have educational resources and seminars that might be " +
			"helpful as you begin your retirement planning journey. Would you like to register " +
			"for an upcoming webinar on retirement basics?"
	}
}
