package catalog

// Built-in tables. Override files under the config dir replace a whole
// table; ids and numeric values are the contract, display text is not.

func defaultQuests() []Quest {
	return []Quest{
		{ID: "q1-1", Level: 1, Title: "Diaphragmatic Breathing", Description: "Record a one-minute audio practicing diaphragmatic breathing. Focus on expanding the abdomen on the inhale.", Type: QuestPhysical},
		{ID: "q1-2", Level: 1, Title: "Quick Introduction", Description: "Record a 30-second video introducing yourself to the camera as if at a networking event.", Type: QuestInterpersonal},
		{ID: "q1-3", Level: 1, Title: "Communication Journal", Description: "Write a journal entry about a recent social interaction. What went well? What could improve?", Type: QuestReflective},
		{ID: "q2-1", Level: 2, Title: "Reading Aloud", Description: "Pick a paragraph from a book and read it aloud, focusing on clarity and diction.", Type: QuestPhysical},
		{ID: "q2-2", Level: 2, Title: "Genuine Compliment", Description: "Give a sincere compliment to a friend or colleague today and note the reaction in your journal.", Type: QuestInterpersonal},
		{ID: "q2-3", Level: 2, Title: "Speech Analysis", Description: "Watch a five-minute talk and note three public-speaking techniques you observed.", Type: QuestReflective},
		{ID: "q3-1", Level: 3, Title: "Tongue Twister", Description: "Record yourself saying a hard tongue twister three times, each faster than the last.", Type: QuestPhysical},
		{ID: "q3-2", Level: 3, Title: "Starting a Conversation", Description: "Start a conversation with a barista, cashier or attendant, asking something beyond the usual.", Type: QuestInterpersonal},
		{ID: "q3-3", Level: 3, Title: "Setting Goals", Description: "Write down your biggest communication goal and one small step toward it this week.", Type: QuestReflective},
	}
}

func defaultMilestones() []Milestone {
	return []Milestone{
		{Level: 5, Title: "Consistent Communicator", Rewards: []string{"+10% XP on physical quests", "Golden avatar"}, Unlocks: []string{"video-recording", "basic-analysis"}},
		{Level: 10, Title: "Brave Speaker", Rewards: []string{"Skill: Steel Focus", "Silver mask avatar"}, Unlocks: []string{"group-events", "mentoring"}},
		{Level: 15, Title: "Vocal Strategist", Rewards: []string{"+15% XP on interpersonal quests", "Persuader badge"}, Unlocks: []string{"advanced-mini-games", "detailed-reports"}},
		{Level: 20, Title: "Professional Communicator", Rewards: []string{"Professional avatar", "VIP community access"}, Unlocks: []string{"corporate-challenges", "premium-networking"}},
		{Level: 25, Title: "Master of Connections", Rewards: []string{"Skill: Socializer", "+20% global XP"}, Unlocks: []string{"live-events", "mentoring-sessions"}},
		{Level: 30, Title: "Inspiring Leader", Rewards: []string{"Leader crown avatar", "Influencer badge"}, Unlocks: []string{"exclusive-workshops", "leadership-mode"}},
	}
}

func defaultDailyChallenges() []DailyChallenge {
	return []DailyChallenge{
		{ID: "daily-read", Title: "Reading Aloud", Description: "Read two pages of a book aloud with emphasis.", XP: 5},
		{ID: "daily-pen", Title: "Pen Between the Teeth", Description: "Speak for two minutes with a pen between your teeth.", XP: 4},
		{ID: "daily-breath", Title: "Diaphragmatic Breathing", Description: "Five minutes of breathing focused on the abdomen.", XP: 3},
		{ID: "daily-rewrite", Title: "Rewrite a Paragraph", Description: "Rewrite a complex text in simple words.", XP: 5},
		{ID: "daily-ted", Title: "Bonus: Analyze a Talk", Description: "Watch a talk and identify one technique it uses.", XP: 3},
		{ID: "daily-friend", Title: "Bonus: Voice Note to a Friend", Description: "Send someone a clear, well-structured voice note.", XP: 5},
	}
}

func defaultMiniGames() []MiniGame {
	return []MiniGame{
		{ID: "game-ranked", Title: "Elite Challenge", Description: "Three hard random tongue twisters to test your limits. Available every five hours.", MinLevel: 1, XPReward: 4, CooldownHours: 5},
		{ID: "game-free", Title: "Free Practice", Description: "Practice without limits or pressure. Great for warming up before events.", MinLevel: 1, XPReward: 0, CooldownHours: 0},
	}
}

func defaultShopItems() []ShopItem {
	return []ShopItem{
		{ID: "bg-default", Name: "Night Standard", Cost: 0, Kind: "background", Value: "#0f172a"},
		{ID: "bg-royal", Name: "Royal Purple", Cost: 100, Kind: "background", Value: "#581c87"},
		{ID: "bg-forest", Name: "Forest Green", Cost: 150, Kind: "background", Value: "#14532d"},
		{ID: "bg-ocean", Name: "Ocean Blue", Cost: 200, Kind: "background", Value: "#1e3a8a"},
		{ID: "bg-sunset", Name: "Sunset", Cost: 300, Kind: "background", Value: "#9a3412"},
		{ID: "bg-gold", Name: "Golden Luxury", Cost: 500, Kind: "background", Value: "#854d0e"},
	}
}

func defaultSpecialEvents() []SpecialEvent {
	return []SpecialEvent{
		{ID: "evt-meeting", Title: "Unexpected Meeting", Description: "Your boss asked for your take on the new project, by surprise, in front of everyone.", XP: 150},
		{ID: "evt-presentation", Title: "Emergency Presentation", Description: "The keynote speaker is out and you have to cover fifteen minutes of the event right now.", XP: 200},
		{ID: "evt-networking", Title: "Networking Session", Description: "You have one hour to make three valuable contacts at an industry event.", XP: 180},
	}
}

// DefaultItemID is the free cosmetic every profile owns from creation.
const DefaultItemID = "bg-default"

// DefaultBackgroundColor matches the DefaultItemID shop value.
const DefaultBackgroundColor = "#0f172a"
