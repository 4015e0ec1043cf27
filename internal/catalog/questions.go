package catalog

import "sync"

// MB is one mebibyte; upload limits are expressed in multiples of it.
const MB = 1 << 20

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in creative direction questionnaire.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = MustNew(defaultQuestions()...)
	})
	return defaultCatalog
}

func required() ValidationRule { return ValidationRule{Required: true} }

func text(min int) ValidationRule { return ValidationRule{Required: true, MinLength: min} }

func defaultQuestions() []Question {
	return []Question{
		{
			ID:       "Q1",
			Text:     "Who are you? (Select the archetype that best fits your brand)",
			Modality: SingleChoice,
			Options: []string{
				"Everyman (relatable, down-to-earth, authentic)",
				"Caregiver (nurturing, supportive, community-focused)",
				"Ruler (authoritative, leader, premium)",
				"Creator (innovative, artistic, original)",
				"Innocent (optimistic, pure, simple)",
				"Sage (wise, knowledgeable, expert)",
				"Explorer (adventurous, independent, pioneering)",
				"Outlaw (rebellious, revolutionary, disruptive)",
				"Magician (transformative, visionary, mystical)",
				"Hero (courageous, inspiring, triumphant)",
				"Lover (passionate, intimate, sensual)",
				"Jester (fun, entertaining, playful)",
			},
			Rule: required(),
		},
		{
			ID:          "Q2",
			Text:        "What's your story arc?",
			Description: "Select 1-2 that best fit - you can mix plots, but one should be primary",
			Modality:    MultiChoice,
			Options: []string{
				"Rags to Riches (self-made success, rising from humble beginnings)",
				"Overcoming the Monster (defeating obstacles/competition/evil forces)",
				"The Quest (journey to obtain a goal, facing trials along the way)",
				"Voyage and Return (entering a strange new world, then returning changed)",
				"Comedy (entertaining through jokes, skits, characters, punchlines)",
				"Tragedy (exploring themes of self-destruction, struggle, mental health, darkness)",
				"Rebirth (trapped by something, then emerging transformed/reborn)",
			},
			Rule: ValidationRule{Required: true, MinSelections: 1, MaxSelections: 2},
		},
		{
			ID:   "Q3",
			Text: "What are the KEY PLOT POINTS in your story that you want the audience to know?",
			Description: "Depending on your plot structure, think about:\n" +
				"• For Overcoming the Monster: What's your 'monster'? What are you fighting against?\n" +
				"• For Rags to Riches: Where did you start? What's the mountain you're climbing?\n" +
				"• For The Quest: What's your goal/destination? What trials are you facing?\n" +
				"• For Voyage and Return: What new worlds are you exploring?\n" +
				"• For Comedy: What recurring characters, jokes, or themes make your brand funny?\n" +
				"• For Tragedy: What struggles, darkness, or emotional themes are you exploring?\n" +
				"• For Rebirth: What trapped you? How were you freed/reborn?",
			Modality: LongText,
			Rule:     text(100),
		},
		{
			ID:          "Q9",
			Text:        "What is your point of view?",
			Description: "What do you stand for? What's your unique perspective on music/culture/your scene?",
			Modality:    LongText,
			Rule:        text(100),
		},
		{
			ID:          "Q10",
			Text:        "What is your aesthetic?",
			Description: "Describe the overall visual vibe/world you want to create",
			Modality:    LongText,
			Rule:        text(100),
		},
		{
			ID:       "Q13",
			Text:     "In one sentence, what makes you different from other DJs in your genre?",
			Modality: ShortText,
			Rule:     text(10),
		},
		{
			ID:   "Q15",
			Text: "What will your brand ALWAYS be about?",
			Description: "What themes or elements will consistently appear in everything you do? " +
				"These are your 'positive protective constraints' - the things that define your world",
			Modality: LongText,
			Rule:     text(100),
		},
		{
			ID:          "Q16",
			Text:        "What should NEVER appear in your brand?",
			Description: "Colors, styles, vibes, themes, topics, or elements you want to avoid",
			Modality:    ShortText,
			Rule:        text(10),
		},
		{
			ID:   "Q28",
			Text: "Describe the color palette for your brand (in words, not hex codes)",
			Description: "Examples: 'neon pink and electric blue with black backgrounds', " +
				"'earthy browns and forest greens', 'monochrome black and white with red accents', " +
				"'pastel sunset colors', etc.",
			Modality: LongText,
			Rule:     text(50),
		},
		{
			ID:       "Q29",
			Text:     "What is the dominant/base color of your brand?",
			Modality: ShortText,
			Rule:     text(5),
		},
		{
			ID:          "Q30",
			Text:        "What is your accent/pop color?",
			Description: "The color that makes things stand out",
			Modality:    ShortText,
			Rule:        text(5),
		},
		{
			ID:   "Q44",
			Text: "Elevator Pitch: In 3 sentences or less, describe your brand story.",
			Description: "What's the show your fans are tuning in to watch?\n\n" +
				"Examples:\n" +
				"• 'Isoxo and Knock2: Two high-energy rebel brands that focus on freedom of expression. " +
				"The brand celebrates outcasts and ignites a feeling of positive rebellion at every turn. " +
				"The visual identity has an edge with undertones of nostalgia, rock, and metal influences.'\n" +
				"• 'Two friends: An everyman brand about two lifelong best friends focused on relatability and fun. " +
				"The two bring you into their normal, authentic world where extraordinary moments happen.'",
			Modality: LongText,
			Rule:     text(100),
		},
		{
			ID:   "Q45",
			Text: "Upload 5-15 images that capture your ideal aesthetic",
			Description: "These should NOT be other music artists. Look to films, fashion, art books, magazines, " +
				"things you loved growing up, architecture, nature, etc. This is one of the most important " +
				"parts - show us what visually inspires you from OUTSIDE the music world.",
			Modality: FileUpload,
			Rule: ValidationRule{
				Required:          true,
				AllowedFileTypes:  []string{"image/jpeg", "image/jpg", "image/png", "image/webp"},
				MaxFileSizeBytes:  20 * MB,
				MaxTotalSizeBytes: 200 * MB,
				MinFiles:          5,
				MaxFiles:          15,
			},
		},
		{
			ID:       "Q47",
			Text:     "Briefly describe what you like about the reference images you uploaded",
			Modality: ShortText,
			Rule:     text(50),
		},
	}
}
