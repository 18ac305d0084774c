package services

// analysisPrompt is the rubric sent ahead of every extracted text.
const analysisPrompt = `Analyze the extracted text below and produce a social media content review with concrete improvement suggestions.

## 1. Content Summary
A short overview of what the text contains and its main message.

## 2. Sentiment Analysis
The emotional tone of the text (positive, negative, neutral or mixed) and how it is likely to affect audience engagement.

## 3. Key Points
The primary themes and messages the text communicates.

## 4. Writing Quality
Grammar and spelling, clarity, structure, tone consistency and fit for the audience.

## 5. Engagement Suggestions
### Hashtags
General, niche, trending and community hashtags that would increase reach.
### Emoji
Where emoji would strengthen the message and its tone.
### Call to Action
Specific prompts that invite comments, shares or saves.
### Trends
Current events, awareness days, challenges or seasonal hooks the content could connect to.

## 6. Optimization Tips
Actionable advice for readability, reach and audience connection.

## 7. Overall Rating
A score from 1 to 10, justified by clarity, engagement potential, shareability and community value.

## 8. Implementation Examples
A revised hashtag set, emoji placement, CTA variations and one trend tie-in written out in full.

Text to analyze:`

const summaryPrompt = "Provide a brief 2-3 sentence summary of the following text:"

const systemPrompt = "You are a social media content strategist. Base every statement on the supplied text only."
