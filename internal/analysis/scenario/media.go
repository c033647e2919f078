package scenario

import (
	"math"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
)

func (g *Generator) whisperUsage(_ *analytics.Snapshot) analytics.Payload {
	vendors := []analytics.Row{
		row("name", "OpenAI Whisper", "value", 489, "percentage", 86.2),
		row("name", "Google Speech-to-Text", "value", 78, "percentage", 13.8),
	}
	models := []analytics.Row{
		row("model", "whisper-1", "requests", 423, "minutes", 1876.5, "cost", 375.30),
		row("model", "whisper-large-v2", "requests", 66, "minutes", 469.2, "cost", 93.84),
		row("model", "google-speech-v1", "requests", 78, "minutes", 234.3, "cost", 46.86),
	}

	dates := g.dateRange(7)
	trends := make([]analytics.Row, len(dates))
	for i, date := range dates {
		x := float64(i)
		whisper := round2(45 + g.float()*20 + math.Sin(x)*10)
		google := round2(8 + g.float()*5 + math.Cos(x)*3)
		total := round2(53 + g.float()*25 + math.Sin(x)*13)
		trends[i] = row("date", date, "whisper", whisper, "googleSpeech", google, "total", total)
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartDonut, "Whisper vs Other Speech APIs", vendors),
			chart(analytics.ChartBar, "API Usage by Model", models),
			chart(analytics.ChartLine, "7-Day Cost Comparison", trends),
		},
		Metrics: []analytics.Metric{
			metric("Total Minutes", "2,580", "+23%", analytics.TrendUp),
			metric("Whisper Cost", "$469.14", "+18%", analytics.TrendUp),
			metric("Cost/Minute", "$0.20", "-5%", analytics.TrendDown),
		},
	}
}

func (g *Generator) transcriptionMetrics(_ *analytics.Snapshot) analytics.Payload {
	accuracy := []analytics.Row{
		row("language", "English", "wer", 4.2, "cer", 2.1, "accuracy", 95.8),
		row("language", "Spanish", "wer", 6.8, "cer", 3.4, "accuracy", 93.2),
		row("language", "Mandarin", "wer", 8.3, "cer", 4.1, "accuracy", 91.7),
		row("language", "French", "wer", 5.9, "cer", 2.9, "accuracy", 94.1),
	}
	processing := []analytics.Row{
		row("duration", "0-1 min", "avgTime", 2.3, "count", 234),
		row("duration", "1-5 min", "avgTime", 8.7, "count", 178),
		row("duration", "5-10 min", "avgTime", 18.4, "count", 89),
		row("duration", "10-30 min", "avgTime", 45.2, "count", 45),
		row("duration", "30+ min", "avgTime", 98.6, "count", 21),
	}

	dates := g.dateRange(14)
	rates := make([]analytics.Row, len(dates))
	for i, date := range dates {
		wave := math.Sin(float64(i) / 2)
		success := 95 + g.float()*4 + wave*2
		failure := 5 - g.float()*4 - wave*2
		rates[i] = row("date", date, "successRate", success, "failureRate", failure)
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartBar, "Accuracy Metrics by Language", accuracy),
			chart(analytics.ChartColumn, "Processing Time by Duration", processing),
			chart(analytics.ChartArea, "14-Day Success/Failure Rates", rates),
		},
		Metrics: []analytics.Metric{
			metric("Avg WER", "6.3%", "-0.8%", analytics.TrendDown),
			metric("Success Rate", "97.2%", "+1.3%", analytics.TrendUp),
			metric("Avg Process Time", "15.4s", "-2.1s", analytics.TrendDown),
		},
	}
}

func (g *Generator) speechCosts(_ *analytics.Snapshot) analytics.Payload {
	byDuration := []analytics.Row{
		row("range", "0-1 min", "totalCost", 45.67, "avgCost", 0.195, "count", 234),
		row("range", "1-5 min", "totalCost", 134.89, "avgCost", 0.757, "count", 178),
		row("range", "5-10 min", "totalCost", 156.23, "avgCost", 1.755, "count", 89),
		row("range", "10-30 min", "totalCost", 89.45, "avgCost", 1.988, "count", 45),
		row("range", "30+ min", "totalCost", 30.54, "avgCost", 1.454, "count", 21),
	}
	byProvider := []analytics.Row{
		row("provider", "OpenAI", "model", "whisper-1", "costPerMinute", 0.20, "totalMinutes", 1876.5, "totalCost", 375.30),
		row("provider", "OpenAI", "model", "whisper-large", "costPerMinute", 0.30, "totalMinutes", 469.2, "totalCost", 140.76),
		row("provider", "Google", "model", "speech-v1", "costPerMinute", 0.15, "totalMinutes", 234.3, "totalCost", 35.15),
	}

	dates := g.dateRange(30)
	daily := make([]analytics.Row, len(dates))
	for i, date := range dates {
		wave := math.Sin(float64(i) / 3)
		cost := round2(12 + g.float()*8 + wave*5)
		minutes := math.Floor(60 + g.float()*40 + wave*20)
		daily[i] = row("date", date, "cost", cost, "minutes", minutes)
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartBar, "Cost Distribution by Duration", byDuration),
			chart(analytics.ChartTable, "Provider Cost Comparison", byProvider),
			chart(analytics.ChartArea, "30-Day Cost and Usage Trend", daily),
		},
		Metrics: []analytics.Metric{
			metric("Total Cost", "$456.78", "+22%", analytics.TrendUp),
			metric("Avg Cost/Min", "$0.195", "-$0.02", analytics.TrendDown),
			metric("Peak Day Cost", "$24.56", "+$3.45", analytics.TrendUp),
		},
	}
}

func (g *Generator) audioAnalysis(_ *analytics.Snapshot) analytics.Payload {
	languages := []analytics.Row{
		row("name", "English", "value", 423, "percentage", 74.6),
		row("name", "Spanish", "value", 67, "percentage", 11.8),
		row("name", "Mandarin", "value", 34, "percentage", 6.0),
		row("name", "French", "value", 23, "percentage", 4.1),
		row("name", "Others", "value", 20, "percentage", 3.5),
	}

	dates := g.dateRange(14)
	trends := make([]analytics.Row, len(dates))
	for i, date := range dates {
		wave := math.Sin(float64(i) / 2)
		requests := math.Floor(30 + g.float()*20 + wave*10)
		minutes := math.Floor(120 + g.float()*80 + wave*40)
		cost := round2(15 + g.float()*10 + wave*5)
		trends[i] = row("date", date, "requests", requests, "minutes", minutes, "cost", cost)
	}

	useCases := []analytics.Row{
		row("useCase", "Meeting Transcription", "requests", 234, "avgDuration", 45.2),
		row("useCase", "Voice Commands", "requests", 178, "avgDuration", 0.5),
		row("useCase", "Podcast Analysis", "requests", 89, "avgDuration", 35.7),
		row("useCase", "Customer Support", "requests", 66, "avgDuration", 8.3),
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartPie, "Audio Requests by Language", languages),
			chart(analytics.ChartArea, "14-Day Audio Processing Trends", trends),
			chart(analytics.ChartBar, "Audio Use Cases Distribution", useCases),
		},
		Metrics: []analytics.Metric{
			metric("Total Audio", "39.1 hours", "+45%", analytics.TrendUp),
			metric("Avg Duration", "4.14 min", "+0.3", analytics.TrendUp),
			metric("Success Rate", "98.4%", "+1.2%", analytics.TrendUp),
		},
	}
}

func (g *Generator) videoAnalysis(_ *analytics.Snapshot) analytics.Payload {
	resolutions := []analytics.Row{
		row("name", "1920x1080", "value", 56, "percentage", 62.9),
		row("name", "1280x720", "value", 23, "percentage", 25.8),
		row("name", "3840x2160", "value", 8, "percentage", 9.0),
		row("name", "Other", "value", 2, "percentage", 2.3),
	}
	processing := []analytics.Row{
		row("process", "Frame Analysis", "videos", 89, "avgTime", 12.4, "cost", 145.67),
		row("process", "Audio Track", "videos", 76, "avgTime", 8.2, "cost", 67.89),
		row("process", "Full Analysis", "videos", 45, "avgTime", 24.6, "cost", 234.56),
	}

	dates := g.dateRange(7)
	trends := make([]analytics.Row, len(dates))
	for i, date := range dates {
		wave := math.Sin(float64(i))
		videos := math.Floor(10 + g.float()*8 + wave*3)
		minutes := math.Floor(50 + g.float()*30 + wave*15)
		frames := math.Floor(250 + g.float()*100 + wave*50)
		trends[i] = row("date", date, "videos", videos, "minutes", minutes, "frames", frames)
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartDonut, "Video Resolution Distribution", resolutions),
			chart(analytics.ChartBar, "Video Processing Analysis", processing),
			chart(analytics.ChartLine, "7-Day Video Processing Activity", trends),
		},
		Metrics: []analytics.Metric{
			metric("Total Videos", "89", "+120%", analytics.TrendUp),
			metric("Avg Duration", "5.13 min", "+0.8", analytics.TrendUp),
			metric("Frame Accuracy", "94.7%", "+2.3%", analytics.TrendUp),
		},
	}
}

var mediaCostComparison = []struct {
	kind       string
	avgCost    float64
	avgLatency float64
	requests   float64
}{
	{"Text (GPT-4)", 0.287, 487, 13621},
	{"Audio (Whisper)", 0.806, 3456, 567},
	{"Images (Vision)", 1.660, 2134, 342},
	{"Video (Multi-Modal)", 2.640, 8234, 89},
}

func (g *Generator) mediaAnalysis(_ *analytics.Snapshot) analytics.Payload {
	types := []analytics.Row{
		row("name", "Audio", "value", 567, "percentage", 56.8, "cost", 456.78),
		row("name", "Images", "value", 342, "percentage", 34.3, "cost", 567.89),
		row("name", "Video", "value", 89, "percentage", 8.9, "cost", 234.56),
	}

	bubbles := make([]analytics.Row, 0, len(mediaCostComparison))
	for _, m := range mediaCostComparison {
		bubbles = append(bubbles, row("name", m.kind, "x", m.avgLatency, "y", m.avgCost, "z", math.Sqrt(m.requests)*2))
	}

	dates := g.dateRange(30)
	trends := make([]analytics.Row, len(dates))
	for i, date := range dates {
		text := math.Floor(400 + g.float()*100)
		audio := math.Floor(15 + g.float()*10)
		images := math.Floor(10 + g.float()*5)
		video := math.Floor(2 + g.float()*3)
		trends[i] = row("date", date, "text", text, "audio", audio, "images", images, "video", video)
	}

	return analytics.Payload{
		Charts: []analytics.Descriptor{
			chart(analytics.ChartPie, "Media Processing Distribution", types),
			chart(analytics.ChartBubble, "Cost vs Latency by Media Type", bubbles),
			chart(analytics.ChartArea, "30-Day Media Processing Trends", trends),
		},
		Metrics: []analytics.Metric{
			metric("Media Requests", "998", "+34%", analytics.TrendUp),
			metric("Media Cost", "$1,259.23", "+28%", analytics.TrendUp),
			metric("Processing Time", "4.2s avg", "-12%", analytics.TrendDown),
		},
	}
}
