package coach

import "strings"

type keywordReply struct {
	keywords []string
	reply    string
}

// Checked in order; the first group with a matching keyword wins.
var keywordReplies = []keywordReply{
	{
		keywords: []string{"hello", "hi", "hey", "greetings", "howdy", "hola"},
		reply:    "Hello! I'm your MindFuel AI Coach. I'm here to help you with your clean eating journey. How can I assist you today?",
	},
	{
		keywords: []string{"sugar", "craving", "crave", "sweet", "alternative", "substitute"},
		reply:    "Great question about sugar alternatives! Consider using natural sweeteners like monk fruit, stevia, or erythritol that don't spike blood sugar. Whole fruits, especially berries, provide natural sweetness with fiber and nutrients. Spices like cinnamon and vanilla extract can enhance sweetness without adding sugar.",
	},
	{
		keywords: []string{"meal", "plan", "food", "eat", "recipe", "breakfast", "lunch", "dinner", "cook"},
		reply:    "Clean eating starts with planning. Try preparing meals in advance featuring a variety of colorful vegetables, quality proteins, and healthy fats. Keep meals simple with a protein + vegetables + healthy carb formula. Stock your kitchen with whole foods and remove processed items to make healthy choices easier.",
	},
	{
		keywords: []string{"progress", "track", "goal", "achiev", "improve", "measure", "success"},
		reply:    "Progress isn't always linear! Focus on non-scale victories like energy levels, sleep quality, and mood improvements rather than just weight. Take progress photos and measurements monthly instead of daily weighing. Journaling your food, energy, and mood can reveal important patterns and celebrate small wins.",
	},
	{
		keywords: []string{"motivat", "encourage", "struggle", "hard", "difficult", "challenge", "stuck"},
		reply:    "Remember why you started this journey - connecting to your deeper 'why' can provide lasting motivation. Create a visual reminder of your goals to see daily. Find an accountability partner or community for support. Celebrate small wins along the way and practice self-compassion when facing setbacks.",
	},
	{
		keywords: []string{"protein", "fat", "carb", "nutrient", "vitamin", "mineral"},
		reply:    "Balanced nutrition is essential for health. Focus on quality proteins like beans, lentils, eggs, and lean meats. Include healthy fats from avocados, nuts, seeds and olive oil. Choose complex carbs like sweet potatoes, quinoa, and oats. Aim for a colorful plate to ensure a wide range of vitamins and minerals.",
	},
	{
		keywords: []string{"water", "drink", "hydrat", "thirst", "fluid"},
		reply:    "Staying well-hydrated is crucial for energy, detoxification and reducing cravings. Aim for at least 8 glasses of water daily. Try infusing water with fruits, herbs or cucumber for flavor without sugar. Herbal teas count toward hydration goals. Consider setting reminders or using a marked water bottle to track intake.",
	},
}

const defaultReply = "I understand you're on a clean eating journey, and I'm here to support you. For specific advice, try asking about meal planning, sugar alternatives, cravings management, healthy recipes, or motivation strategies. I'm happy to share practical tips tailored to your needs!"

// FallbackReply answers from a fixed keyword table when no model is reachable.
func FallbackReply(message string) string {
	msg := strings.ToLower(message)
	for _, kr := range keywordReplies {
		for _, kw := range kr.keywords {
			if strings.Contains(msg, kw) {
				return kr.reply
			}
		}
	}
	return defaultReply
}
