package badge

// DefaultCatalog возвращает стандартный каталог наград CampusCents.
// Сеется при старте приложения, если записей ещё нет. Пороги денежных
// условий указаны в центах.
func DefaultCatalog() []*Definition {
	return []*Definition{
		// ───────────────────────── Накопления ─────────────────────────
		{
			ID:            "first-dollar",
			Name:          "First Dollar",
			Description:   "Save your first dollar",
			Category:      CategorySavings,
			Icon:          "piggy-bank",
			Rarity:        RarityCommon,
			Requirement:   Requirement{Type: RequirementAmountSaved, Value: 100},
			PointsAwarded: 10,
			SortOrder:     10,
			Active:        true,
		},
		{
			ID:            "penny-pincher",
			Name:          "Penny Pincher",
			Description:   "Reach $100 in net savings",
			Category:      CategorySavings,
			Icon:          "coins",
			Rarity:        RarityCommon,
			Requirement:   Requirement{Type: RequirementAmountSaved, Value: 10_000},
			PointsAwarded: 50,
			SortOrder:     20,
			Active:        true,
		},
		{
			ID:            "smart-saver",
			Name:          "Smart Saver",
			Description:   "Reach $500 in net savings",
			Category:      CategorySavings,
			Icon:          "vault",
			Rarity:        RarityRare,
			Requirement:   Requirement{Type: RequirementAmountSaved, Value: 50_000},
			PointsAwarded: 150,
			SortOrder:     30,
			Active:        true,
		},
		{
			ID:            "grand-keeper",
			Name:          "Grand Keeper",
			Description:   "Reach $1,000 in net savings",
			Category:      CategorySavings,
			Icon:          "treasure-chest",
			Rarity:        RarityEpic,
			Requirement:   Requirement{Type: RequirementAmountSaved, Value: 100_000},
			PointsAwarded: 300,
			SortOrder:     40,
			Active:        true,
		},

		// ─────────────────────────── Серии ───────────────────────────
		{
			ID:            "week-warrior",
			Name:          "Week Warrior",
			Description:   "Stay active 7 days in a row",
			Category:      CategoryStreak,
			Icon:          "flame",
			Rarity:        RarityCommon,
			Requirement:   Requirement{Type: RequirementStreakDays, Value: 7},
			PointsAwarded: 50,
			SortOrder:     50,
			Active:        true,
		},
		{
			ID:            "month-master",
			Name:          "Month Master",
			Description:   "Stay active 30 days in a row",
			Category:      CategoryStreak,
			Icon:          "calendar-flame",
			Rarity:        RarityEpic,
			Requirement:   Requirement{Type: RequirementStreakDays, Value: 30},
			PointsAwarded: 250,
			SpecialPerks:  []string{"referral_boost", "profile_highlight"},
			SortOrder:     60,
			Active:        true,
		},
		{
			ID:            "centurion",
			Name:          "Centurion",
			Description:   "Stay active 100 days in a row",
			Category:      CategoryStreak,
			Icon:          "laurel",
			Rarity:        RarityLegendary,
			Requirement:   Requirement{Type: RequirementStreakDays, Value: 100},
			PointsAwarded: 1000,
			SpecialPerks:  []string{"exclusive_features"},
			SortOrder:     70,
			Active:        true,
		},

		// ─────────────────────────── Цели ────────────────────────────
		{
			ID:            "goal-getter",
			Name:          "Goal Getter",
			Description:   "Complete your first savings goal",
			Category:      CategoryGoals,
			Icon:          "target",
			Rarity:        RarityCommon,
			Requirement:   Requirement{Type: RequirementGoalsCompleted, Value: 1},
			PointsAwarded: 30,
			SortOrder:     80,
			Active:        true,
		},
		{
			ID:            "serial-achiever",
			Name:          "Serial Achiever",
			Description:   "Complete 5 savings goals",
			Category:      CategoryGoals,
			Icon:          "trophy",
			Rarity:        RarityRare,
			Requirement:   Requirement{Type: RequirementGoalsCompleted, Value: 5},
			PointsAwarded: 200,
			SortOrder:     90,
			Active:        true,
		},

		// ───────────────────────── Подработки ─────────────────────────
		{
			ID:            "side-hustler",
			Name:          "Side Hustler",
			Description:   "Complete your first side hustle",
			Category:      CategoryHustle,
			Icon:          "briefcase",
			Rarity:        RarityCommon,
			Requirement:   Requirement{Type: RequirementHustlesCompleted, Value: 1},
			PointsAwarded: 40,
			SortOrder:     100,
			Active:        true,
		},
		{
			ID:            "hustle-pro",
			Name:          "Hustle Pro",
			Description:   "Complete 10 side hustles",
			Category:      CategoryHustle,
			Icon:          "rocket",
			Rarity:        RarityEpic,
			Requirement:   Requirement{Type: RequirementHustlesCompleted, Value: 10},
			PointsAwarded: 300,
			SortOrder:     110,
			Active:        true,
		},

		// ─────────────────────────── Социум ───────────────────────────
		{
			ID:            "show-off",
			Name:          "Show Off",
			Description:   "Share an achievement with your feed",
			Category:      CategorySocial,
			Icon:          "megaphone",
			Rarity:        RarityCommon,
			Requirement:   Requirement{Type: RequirementAchievementsShared, Value: 1},
			PointsAwarded: 20,
			SortOrder:     120,
			Active:        true,
		},

		// ─────────────────────────── Кампус ────────────────────────────
		{
			ID:            "campus-elite",
			Name:          "Campus Elite",
			Description:   "Reach the top 10 of your campus savings leaderboard",
			Category:      CategoryCampus,
			Icon:          "medal",
			Rarity:        RarityEpic,
			Requirement:   Requirement{Type: RequirementCampusRank, Value: 10},
			PointsAwarded: 250,
			SortOrder:     130,
			Active:        true,
		},
		{
			ID:            "campus-champion",
			Name:          "Campus Champion",
			Description:   "Take first place on your campus savings leaderboard",
			Category:      CategoryCampus,
			Icon:          "crown",
			Rarity:        RarityLegendary,
			Requirement:   Requirement{Type: RequirementCampusRank, Value: 1},
			PointsAwarded: 500,
			SpecialPerks:  []string{"profile_highlight"},
			SortOrder:     140,
			Active:        true,
		},

		// ─────────────────────────── Бюджет ────────────────────────────
		{
			ID:            "budget-keeper",
			Name:          "Budget Keeper",
			Description:   "Stay within budget 14 days in a row",
			Category:      CategoryBudget,
			Icon:          "scales",
			Rarity:        RarityRare,
			Requirement:   Requirement{Type: RequirementBudgetStreak, Value: 14},
			PointsAwarded: 150,
			SortOrder:     150,
			Active:        true,
		},
	}
}
