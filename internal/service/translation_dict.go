package service

import "github.com/medcase-assist-server/internal/domain"

// phraseTranslations holds the static per-language fallback
// dictionaries used when the machine-translation collaborators are
// unavailable. Matching is whole-word and case-insensitive on the
// English phrase; multi-word phrases are applied before their
// substrings by the longest-first rule ordering.
var phraseTranslations = map[domain.Language]map[string]string{
	domain.LanguageHindi: {
		"high blood pressure":        "उच्च रक्तचाप",
		"low blood pressure":         "निम्न रक्तचाप",
		"heart attack":               "दिल का दौरा",
		"chest pain":                 "छाती में दर्द",
		"irregular heartbeat":        "अनियमित दिल की धड़कन",
		"fast heartbeat":             "तेज दिल की धड़कन",
		"slow heartbeat":             "धीमी दिल की धड़कन",
		"blood clot":                 "खून का थक्का",
		"shortness of breath":        "सांस लेने में कठिनाई",
		"lung infection":             "फेफड़ों का संक्रमण",
		"difficulty breathing":       "सांस लेने में कठिनाई",
		"serious lung disease":       "गंभीर फेफड़ों की बीमारी",
		"high blood sugar":           "उच्च रक्त शर्करा",
		"low blood sugar":            "निम्न रक्त शर्करा",
		"diabetes":                   "मधुमेह",
		"stroke":                     "मस्तिष्क आघात",
		"seizure":                    "दौरे पड़ना",
		"severe headache":            "गंभीर सिरदर्द",
		"memory disease":             "स्मृति रोग",
		"stomach infection":          "पेट का संक्रमण",
		"liver disease":              "जिगर की बीमारी",
		"joint pain":                 "जोड़ों में दर्द",
		"weak bones":                 "कमजोर हड्डियां",
		"broken bone":                "टूटी हुई हड्डी",
		"muscle pain":                "मांसपेशियों में दर्द",
		"cancer":                     "कैंसर",
		"skin disease":               "त्वचा रोग",
		"infection":                  "संक्रमण",
		"inflammation":               "सूजन",
		"medicine":                   "दवा",
		"treatment":                  "इलाज",
		"doctor":                     "डॉक्टर",
		"hospital":                   "अस्पताल",
		"take medicine daily":        "रोज दवा लें",
		"follow doctor instructions": "डॉक्टर के निर्देशों का पालन करें",
		"drink plenty of water":      "खूब पानी पिएं",
		"rest":                       "आराम",
		"exercise":                   "व्यायाम",
		"healthy diet":               "स्वस्थ आहार",
	},
	domain.LanguageKannada: {
		"high blood pressure":        "ಹೆಚ್ಚಿನ ರಕ್ತದೊತ್ತಡ",
		"low blood pressure":         "ಕಡಿಮೆ ರಕ್ತದೊತ್ತಡ",
		"heart attack":               "ಹೃದಯಾಘಾತ",
		"chest pain":                 "ಎದೆ ನೋವು",
		"irregular heartbeat":        "ಅನಿಯಮಿತ ಹೃದಯ ಬಡಿತ",
		"fast heartbeat":             "ವೇಗದ ಹೃದಯ ಬಡಿತ",
		"slow heartbeat":             "ನಿಧಾನ ಹೃದಯ ಬಡಿತ",
		"blood clot":                 "ರಕ್ತ ಹೆಪ್ಪುಗಟ್ಟುವಿಕೆ",
		"shortness of breath":        "ಉಸಿರಾಟದ ತೊಂದರೆ",
		"lung infection":             "ಶ್ವಾಸಕೋಶದ ಸೋಂಕು",
		"difficulty breathing":       "ಉಸಿರಾಡಲು ಕಷ್ಟ",
		"serious lung disease":       "ಗಂಭೀರ ಶ್ವಾಸಕೋಶದ ರೋಗ",
		"high blood sugar":           "ಹೆಚ್ಚಿನ ರಕ್ತದ ಸಕ್ಕರೆ",
		"low blood sugar":            "ಕಡಿಮೆ ರಕ್ತದ ಸಕ್ಕರೆ",
		"diabetes":                   "ಮಧುಮೇಹ",
		"stroke":                     "ಪಾರ್ಶ್ವವಾಯು",
		"seizure":                    "ಸೆಳೆತ",
		"severe headache":            "ತೀವ್ರ ತಲೆನೋವು",
		"memory disease":             "ಸ್ಮೃತಿ ರೋಗ",
		"stomach infection":          "ಹೊಟ್ಟೆಯ ಸೋಂಕು",
		"liver disease":              "ಯಕೃತ್ತಿನ ರೋಗ",
		"joint pain":                 "ಕೀಲು ನೋವು",
		"weak bones":                 "ದುರ್ಬಲ ಮೂಳೆಗಳು",
		"broken bone":                "ಮುರಿದ ಮೂಳೆ",
		"muscle pain":                "ಸ್ನಾಯು ನೋವು",
		"cancer":                     "ಕ್ಯಾನ್ಸರ್",
		"skin disease":               "ಚರ್ಮ ರೋಗ",
		"infection":                  "ಸೋಂಕು",
		"inflammation":               "ಉರಿಯೂತ",
		"medicine":                   "ಔಷಧಿ",
		"treatment":                  "ಚಿಕಿತ್ಸೆ",
		"doctor":                     "ವೈದ್ಯರು",
		"hospital":                   "ಆಸ್ಪತ್ರೆ",
		"take medicine daily":        "ಪ್ರತಿದಿನ ಔಷಧಿ ತೆಗೆದುಕೊಳ್ಳಿ",
		"follow doctor instructions": "ವೈದ್ಯರ ಸೂಚನೆಗಳನ್ನು ಅನುಸರಿಸಿ",
		"drink plenty of water":      "ಸಾಕಷ್ಟು ನೀರು ಕುಡಿಯಿರಿ",
		"rest":                       "ವಿಶ್ರಾಂತಿ",
		"exercise":                   "ವ್ಯಾಯಾಮ",
		"healthy diet":               "ಆರೋಗ್ಯಕರ ಆಹಾರ",
	},
	domain.LanguageTelugu: {
		"high blood pressure":        "అధిక రక్తపోటు",
		"low blood pressure":         "తక్కువ రక్తపోటు",
		"heart attack":               "గుండెపోటు",
		"chest pain":                 "ఛాతీ నొప్పి",
		"irregular heartbeat":        "అక్రమ గుండె స్పందన",
		"fast heartbeat":             "వేగవంతమైన గుండె స్పందన",
		"slow heartbeat":             "నెమ్మదిగా గుండె స్పందన",
		"blood clot":                 "రక్తం గడ్డకట్టడం",
		"shortness of breath":        "శ్వాస ఆడకపోవడం",
		"lung infection":             "ఊపిరితిత్తుల సంక్రమణ",
		"difficulty breathing":       "శ్వాస తీసుకోవడంలో ఇబ్బంది",
		"serious lung disease":       "తీవ్రమైన ఊపిరితిత్తుల వ్యాధి",
		"high blood sugar":           "అధిక రక్తంలో చక్కెర",
		"low blood sugar":            "తక్కువ రక్తంలో చక్కెర",
		"diabetes":                   "మధుమేహం",
		"stroke":                     "పక్షవాతం",
		"seizure":                    "మూర్ఛ",
		"severe headache":            "తీవ్రమైన తలనొప్పి",
		"memory disease":             "జ్ఞాపకశక్తి వ్యాధి",
		"stomach infection":          "కడుపు సంక్రమణ",
		"liver disease":              "కాలేయ వ్యాధి",
		"joint pain":                 "కీళ్ల నొప్పి",
		"weak bones":                 "బలహీనమైన ఎముకలు",
		"broken bone":                "విరిగిన ఎముక",
		"muscle pain":                "కండరాల నొప్పి",
		"cancer":                     "క్యాన్సర్",
		"skin disease":               "చర్మ వ్యాధి",
		"infection":                  "సంక్రమణ",
		"inflammation":               "వాపు",
		"medicine":                   "మందు",
		"treatment":                  "చికిత్స",
		"doctor":                     "వైద్యుడు",
		"hospital":                   "ఆసుపత్రి",
		"take medicine daily":        "రోజూ మందు తీసుకోండి",
		"follow doctor instructions": "వైద్యుల సూచనలను పాటించండి",
		"drink plenty of water":      "పుష్కలంగా నీరు త్రాగండి",
		"rest":                       "విశ్రాంతి",
		"exercise":                   "వ్యాయామం",
		"healthy diet":               "ఆరోగ్యకరమైన ఆహారం",
	},
}
