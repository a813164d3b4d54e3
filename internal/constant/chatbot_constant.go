package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	// Substituted when retrieval produced nothing worth formatting
	NoContextPlaceholder = "No specific context needed."
	NoHistoryPlaceholder = "No previous conversation."

	// Generation failure reply; the error text (first 50 chars) goes in the parentheses
	GenerationFailureReply = "I'm having a bit of trouble right now. Could you try again? (%s)"

	CrisisResponse = `🆘 **I'm concerned about what you're sharing.**

Your safety is the top priority. Please reach out for immediate support:

📞 **Tele-MANAS**: Call **14416** or **1800-891-4416** (Toll-free, 24/7)
📱 **iCall**: **9152987821**
📱 **Vandrevala Foundation**: **1860-2662-345** (24/7)
🌐 **International**: https://findahelpline.com/

You are not alone. These feelings can get better with support.

If you're in immediate danger, please call **112** or go to your nearest emergency room.

💚 *I'm here when you're ready to talk more.*`

	Disclaimer = `*I am an AI assistant, not a licensed therapist or doctor. This is informational support, not medical advice. In an emergency, call Tele-MANAS at 14416 or 112.*`
)
