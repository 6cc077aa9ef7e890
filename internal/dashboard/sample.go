package dashboard

import (
	"time"

	"github.com/pixelflowlabs/trendreel/internal/models"
)

// SampleSnapshot is shown when the trends API cannot be reached
func SampleSnapshot() *models.TrendSnapshot {
	return &models.TrendSnapshot{
		ID:        "67d1e601339d0d4ab59040de",
		Timestamp: time.Date(2025, 3, 12, 19, 52, 19, 406000000, time.UTC),
		Domain:    "technology,Blockchain",
		AIAnalysis: &models.AIAnalysis{
			ContentRecommendations: []string{
				"Create short, engaging videos explaining blockchain basics and showcasing real-world applications.",
				"Develop content that bridges the gap between futuristic concepts (Metaverse, AI) and practical implementations using blockchain.",
				"Focus on educational content targeted at beginners interested in cryptocurrency and blockchain technology. Explain the technology in a simple and easy to understand manner.",
				"Highlight the benefits of blockchain technology across various industries and its impact on everyday life.",
				"Partner with technology influencers and experts to create credible and trustworthy content.",
				"Encourage user interaction and feedback to gauge sentiment and address concerns regarding blockchain technology.",
			},
			EmergingPatterns: []string{
				"Convergence of blockchain technology with diverse sectors (automotive, holograms, manufacturing).",
				"Emphasis on accessibility and ease of understanding of cryptocurrency concepts (e.g. #cryptoforbeginners).",
				"Utilization of short-form video for quick technology updates and science demonstrations.",
				"Focus on practical applications and tangible benefits of blockchain rather than purely speculative or investment-oriented narratives.",
				"Trend of blockchain startups showcasing their technological innovations through various channels (Reddit, Youtube, Bluesky).",
			},
			KeyInsights: []string{
				"Short-form video content (shorts) is a dominant medium for disseminating information and engaging with audiences across technology, science, and crypto topics.",
				"While blockchain and cryptocurrency remain key themes, there's a visible effort to broaden the appeal by connecting them to tangible applications like car seat technology and Industry 4.0 solutions (Swisstronik).",
				"The integration of blockchain technology with diverse fields like hologram development and public recognition algorithms suggests a trend towards real-world utility beyond finance.",
				"There is also a strong element of basic or intro-level crypto education and discussion happening, evidenced by hashtags like #cryptoforbeginners and keywords like 'crypto'.",
				"The data highlights a mix of futuristic aspirations (Metaverse_Blockchain, 'This is future...') and practical advancements (carseat technology, Swisstronik).",
				"There is a potential disconnect between the neutral sentiment and the focus on 'revolutionary' and 'future' technologies. Sentiment may be cautiously optimistic or hesitant.",
			},
			SentimentAnalysis: "The overall sentiment is neutral, which is interesting considering the presence of terms like 'revolutionary' and 'future'. This might indicate a cautious optimism or a wait-and-see approach from the audience. It could also reflect a skepticism towards overly hyped technologies, or a deliberate attempt by content creators to avoid overly positive pronouncements that might be perceived as shilling or biased. Further investigation into user comments and engagement is needed to understand the nuances of this neutral sentiment.",
			Summary:           "The data indicates a burgeoning interest in blockchain technology's practical applications across diverse sectors, driven by short-form video content and educational initiatives aimed at beginners. While sentiment remains neutral, there is potential for increased engagement as the technology becomes more accessible and its real-world benefits become clearer.",
			Timestamp:         time.Date(2025, 3, 12, 19, 52, 33, 99360000, time.UTC),
			TrendPrediction:   "In the next 24-48 hours, expect to see a continued focus on short-form video content explaining blockchain applications across various industries. There will likely be a surge in content targeted at beginners, aiming to demystify cryptocurrency and blockchain concepts. The sentiment is likely to remain neutral, possibly with a slight lean towards positive as more practical applications are showcased. We anticipate more startups leveraging these channels to showcase cutting-edge innovations.",
		},
		Sentiment: models.Sentiment{
			OverallMood: "neutral",
			Data: models.SentimentData{
				TextBlob: models.LexiconScores{
					AvgPolarity:     0.07461771473444469,
					AvgSubjectivity: 0.33921012175891246,
				},
				Transformer: models.TransformerScores{
					AvgConfidence:      0.9012164858079725,
					PositivePercentage: 43.07692307692308,
				},
			},
		},
		TopHashtags: map[string]int{
			"45": 2, "50Cent": 1, "7": 1, "AyoTechnology": 1, "BTC": 2,
			"Blockchain": 2, "CryptoEducation": 2, "CryptoExplained": 2, "CryptoInvesting": 2,
			"CryptoMarket": 2, "CryptoStaking": 2, "CryptoTrading": 2, "JustinTimberlake": 1,
			"Remastered": 1, "bitcoin": 3, "blockchain": 2, "blum": 3, "blumacademy": 3,
			"crypto": 3, "cryptocurrency": 3, "cryptoforbeginners": 3, "insideout2": 1,
			"science": 4, "shorts": 7, "tech": 3, "technology": 6, "trending": 4,
			"virtualreality": 1, "visor": 1, "vr": 1,
		},
		TopTrends: []string{
			"CryptoTechnology",
			"blockchain_startups",
			"CryptoCurrency",
			"Bitcoin",
			"Metaverse_Blockchain",
			"50 Cent -...",
			"This is future...",
			"Worlds smallest 4K...",
			"New Science Project...",
			"Revolutionary carseat technology...",
		},
		TopWords: map[string]int{
			"bitcoin": 12, "blockchain": 27, "crypto": 17, "like": 13, "mini": 13,
			"project": 15, "science": 13, "technology": 35, "tractor": 27, "video": 20,
		},
	}
}
