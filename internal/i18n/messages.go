package i18n

// messages is the localized template catalog, keyed by message id then
// language code. Keys missing a language fall back to English.
var messages = map[string]map[string]string{
	"wake_intro": {
		"en": "Hello, my name is Clara, the receptionist at Info Services. How may I help you today?",
		"ta": "வணக்கம், நான் கிளாரா, இன்போ சர்வீசஸ் அலுவலகத்தின் வரவேற்பாளர். இன்று நான் எப்படி உதவலாம்?",
		"te": "హలో, నేను క్లారా, ఇన్ఫో సర్వీసెస్ రిసెప్షనిస్ట్. ఈ రోజు మీకు ఎలా సహాయం చేయగలను?",
		"hi": "नमस्ते, मैं क्लारा हूँ, इन्फो सर्विसेस की रिसेप्शनिस्ट। आज मैं आपकी कैसे मदद कर सकती हूँ?",
	},
	"language_selection_prompt": {
		"en": "I can speak English, Tamil, Telugu, and Hindi. Which one do you prefer?",
		"ta": "நான் ஆங்கிலம், தமிழ், தெலுங்கு மற்றும் இந்தி மொழிகளில் பேச முடியும். நீங்கள் எந்த மொழியை விரும்புகிறீர்கள்?",
		"te": "నేను ఇంగ్లీష్, తమిళం, తెలుగు, హిందీ మాట్లాడగలను. మీరు ఏ భాషలో మాట్లాడాలని ఇష్టపడుతున్నారు?",
		"hi": "मैं अंग्रेज़ी, तमिल, तेलुगु और हिंदी में बात कर सकती हूँ। आप किस भाषा को पसंद करते हैं?",
	},
	"language_selection_retry": {
		"en": "Please say English, Tamil, Telugu, or Hindi so I can continue.",
		"ta": "தயவுசெய்து ஆங்கிலம், தமிழ், தெலுங்கு அல்லது இந்தி என்று கூறுங்கள்.",
		"te": "దయచేసి ఇంగ్లీష్, తమిళం, తెలుగు, లేదా హిందీలో చెప్పండి, అప్పుడు నేను కొనసాగించగలను.",
		"hi": "कृपया अंग्रेज़ी, तमिल, तेलुगु या हिंदी में से किसी एक का नाम बताइए।",
	},
	"language_selection_confirmed": {
		"en": "Great! I'll speak in English. Are you an Employee or a Visitor?",
		"ta": "சிறப்பு! நான் தமிழ் மொழியில் பேசுகிறேன். நீங்கள் ஊழியரா அல்லது பார்வையாளரா?",
		"te": "గ్రేట్! నేను తెలుగు మాట్లాడతాను. మీరు ఉద్యోగి లేదా అతిథి?",
		"hi": "बहुत बढ़िया! मैं हिंदी में बात करूँगी। क्या आप कर्मचारी हैं या आगंतुक?",
	},
	"classification_employee": {
		"en": "Great! Please show your face to the camera for recognition.",
		"ta": "சிறப்பாக இருக்கிறது! முகஅடையாளத்திற்காக கேமராவை நோக்கி பாருங்கள்.",
		"te": "గ్రేట్! దయచేసి గుర్తింపుకోసం మీ ముఖం కెమెరాకు చూపండి.",
		"hi": "बहुत बढ़िया! पहचान के लिए कृपया कैमरा की ओर देखें।",
	},
	"classification_visitor": {
		"en": "Welcome! Please provide your name, phone number, purpose of visit, and who you're meeting.",
		"ta": "வரவேற்கிறோம்! உங்கள் பெயர், தொலைபேசி எண், வருகையின் காரணம், மேலும் யாரை சந்திக்கிறீர்கள் என்பதை கூறுங்கள்.",
		"te": "వెల్కమ్! దయచేసి మీ వివరాలు చెప్పండి: పేరు, ఫోన్ నంబర్, సందర్శన కారణం, మరియు మీరు కలుసుకోవబోయే వ్యక్తి.",
		"hi": "स्वागत है! कृपया अपना नाम, फ़ोन नंबर, आने का उद्देश्य और किससे मिलने आए हैं बताइए।",
	},
	"classification_retry": {
		"en": "I didn't catch that. Are you an Employee or a Visitor?",
		"ta": "எனக்கு புரியவில்லை. நீங்கள் ஊழியரா அல்லது பார்வையாளரா?",
		"te": "నాకు అర్ధం కాలేదు. మీరు ఉద్యోగి లేదా అతిథి?",
		"hi": "मुझे समझ नहीं आया। क्या आप कर्मचारी हैं या आगंतुक?",
	},
	"language_support_affirm": {
		"en": "I can assist you in English, Tamil, Telugu, or Hindi. How may I help you?",
		"ta": "நான் ஆங்கிலம், தமிழ், தெலுங்கு, இந்தி மொழிகளில் உதவ முடியும். எப்படி உதவலாம்?",
		"te": "నేను మీకు ఇంగ్లీష్, తమిళం, తెలుగు, లేదా హిందీలో సహాయం చేయగలను. నేను మీకు ఎలా సహాయం చేయగలను?",
		"hi": "मैं अंग्रेज़ी, तमिल, तेलुगु या हिंदी में आपकी मदद कर सकती हूँ। मैं आपकी कैसे सहायता करूँ?",
	},
	"manual_face_not_recognized": {
		"en": "Face not recognized. Please share your registered company email or employee ID so I can verify you manually.",
		"ta": "முகம் கண்டறியப்படவில்லை. கையேட்டு சரிபார்ப்புக்காக தயவுசெய்து உங்கள் பதிவு செய்யப்பட்ட நிறுவன மின்னஞ்சல் அல்லது ஊழியர் ஐடி அளிக்கவும்.",
		"te": "ముఖం గుర్తించబడలేదు. దయచేసి మీ రిజిస్టర్ అయిన కంపెనీ ఇమెయిల్ లేదా ఉద్యోగ ID చెప్పండి, అప్పుడు నేను మాన్యువల్‌గా మీను పరిశీలించగలను.",
		"hi": "चेहरा पहचाना नहीं जा सका। कृपया मैनुअल सत्यापन के लिए अपना पंजीकृत कंपनी ईमेल या कर्मचारी आईडी बताइए।",
	},
	"manual_no_session": {
		"en": "No active session. Please say 'Hey Clara' to start.",
		"ta": "செயலில் இருக்கும் அமர்வு இல்லை. தொடங்க 'Hey Clara' என்று சொல்லுங்கள்.",
		"te": "యాక్టివ్ సెషన్ లేదు. ప్రారంభించడానికి 'హే క్లారా' అని చెప్పండి.",
		"hi": "कोई सक्रिय सत्र नहीं है। प्रारंभ करने के लिए 'Hey Clara' कहिए।",
	},
	"manual_missing_employee_id": {
		"en": "Please provide your employee ID so I can look you up and send an OTP.",
		"ta": "உங்கள் ஊழியர் ஐடியைத் தெரிவிக்கவும், அதனால் நான் OTP அனுப்ப முடியும்.",
		"te": "దయచేసి మీ ఉద్యోగ ID ఇవ్వండి, అప్పుడు నేను OTP పంపగలను.",
		"hi": "कृपया अपना कर्मचारी आईडी बताइए ताकि मैं आपको ओटीपी भेज सकूँ।",
	},
	"manual_id_not_found": {
		"en": "I couldn't find that employee ID in our records. Please recheck it.",
	},
	"manual_lookup_error": {
		"en": "I couldn't reach the employee directory right now. Please try again in a moment.",
	},
	"manual_no_email_on_file": {
		"en": "I can't verify you without a valid email address on file. Please contact the front desk.",
	},
	"manual_otp_sent": {
		"en": "Hi {name}, I've sent an OTP via {method} ({detail}). Please tell me the OTP now.",
		"ta": "{name}, நான் {method} மூலம் OTP அனுப்பியுள்ளேன். சரிபார்ப்பை நிறைவு செய்ய அதை பகிரவும்.",
		"te": "{name}, నేను {method} ద్వారా OTP పంపాను. వెరిఫికేషన్ పూర్తి చేయడానికి దయచేసి దాన్ని షేర్ చేయండి.",
		"hi": "{name}, मैंने {method} पर ओटीपी भेजा है। सत्यापन पूरा करने के लिए कृपया उसे बताइए।",
	},
	"manual_otp_send_failed": {
		"en": "I couldn't send the OTP right now ({error}). Please try again shortly.",
		"ta": "இப்போது OTP அனுப்ப முடியவில்லை ({error}). சிறிது நேரத்தில் மீண்டும் முயற்சிக்கவும்.",
		"te": "ప్రస్తుతం OTP పంపలేకపోయాను ({error}). కొద్దిసేపటి తర్వాత మళ్లీ ప్రయత్నించండి.",
		"hi": "मैं फिलहाल ओटीपी भेज नहीं पाई ({error})। कृपया थोड़ी देर में फिर कोशिश करें।",
	},
	"manual_otp_not_requested": {
		"en": "I don't have a pending OTP for you. Share your employee ID first so I can send a fresh one.",
		"ta": "உங்களுக்காக நிலுவையில் உள்ள OTP இல்லை. புதியதை அனுப்ப முதலில் உங்கள் பணியாளர் ஐடியைச் சொல்லுங்கள்.",
		"te": "మీ కోసం పెండింగ్ OTP లేదు. కొత్తది పంపడానికి ముందుగా మీ ఉద్యోగి ఐడీ చెప్పండి.",
		"hi": "आपके लिए कोई ओटीपी लंबित नहीं है। नया भेजने के लिए पहले अपनी कर्मचारी आईडी बताएं।",
	},
	"manual_otp_failed": {
		"en": "OTP incorrect. Attempts left: {remaining}.",
		"ta": "OTP தவறானது. மீதமுள்ள முயற்சிகள்: {remaining}.",
		"te": "OTP తప్పు. మిగిలిన ప్రయత్నాలు: {remaining}.",
		"hi": "ओटीपी गलत है। शेष प्रयास: {remaining}।",
	},
	"manual_otp_exhausted": {
		"en": "Too many failed OTP attempts. Please restart verification from the beginning.",
		"ta": "பல தவறான OTP முயற்சிகள். தயவுசெய்து சரிபார்ப்பை மீண்டும் தொடங்கவும்.",
		"te": "చాలా OTP ప్రయత్నాలు విఫలమయ్యాయి. దయచేసి వెరిఫికేషన్ మళ్లీ ప్రారంభించండి.",
		"hi": "बहुत अधिक असफल ओटीपी प्रयास। कृपया सत्यापन फिर से शुरू करें।",
	},
	"manual_internal_error_retry": {
		"en": "I ran into an internal error during verification. Could you please share the OTP again?",
		"ta": "சரிபார்ப்பின் போது உள் பிழை ஏற்பட்டது. தயவுசெய்து OTP-ஐ மீண்டும் தெரிவிக்க முடியுமா?",
		"te": "వేరిఫికేషన్ సమయంలో ఇంటర్నల్ ఎరర్ వచ్చింది. దయచేసి OTPను మళ్లీ షేర్ చేయగలరా?",
		"hi": "सत्यापन के दौरान आंतरिक त्रुटि हुई। कृपया ओटीपी फिर से बताएँ।",
	},
	"manual_otp_verified": {
		"en": "OTP verified. Welcome {name}!",
		"ta": "OTP சரிபார்க்கப்பட்டது. வரவேற்கிறோம், {name}!",
		"te": "OTP వెరిఫై అయింది. స్వాగతం {name}!",
		"hi": "ओटीपी सत्यापित हो गया। स्वागत है, {name}!",
	},
	"manual_not_verified": {
		"en": "Invalid session or not verified yet.",
		"ta": "அமர்வு தவறானது அல்லது இன்னும் சரிபார்க்கப்படவில்லை.",
		"te": "ఇన్వాలిడ్ సెషన్ లేదా ఇంకా వెరిఫై కాలేదు.",
		"hi": "सत्र मान्य नहीं है या अभी सत्यापन नहीं हुआ है।",
	},
	"face_recognition_success": {
		"en": "I'm glad to see you, {name}. How can I help you today?",
		"ta": "உங்களை மீண்டும் சந்தித்ததில் மகிழ்ச்சி, {name}. இன்று எப்படி உதவலாம்?",
		"te": "మిమ్మల్ని చూసి ఆనందంగా ఉంది {name}. ఈ రోజు ఎలా సహాయం చేయగలను?",
		"hi": "आपसे मिलकर खुशी हुई, {name}। आज मैं आपकी कैसे मदद कर सकती हूँ?",
	},
	"manager_visit_welcome": {
		"en": "Welcome {name}! Hope your visit to our {office} office goes smoothly. Your meeting with {manager} is confirmed.",
	},
	"face_registration_ready": {
		"en": "Please look at the camera to register your face for future quick access.",
		"ta": "அடுத்த முறை விரைவாக அணுக உங்கள் முகத்தை பதிவு செய்ய கேமராவை நோக்கிப் பாருங்கள்.",
		"te": "దయచేసి కెమెరా వైపు చూసి మీ ముఖాన్ని రిజిస్టర్ చేసుకోండి, ఫ్యూచర్ యాక్సెస్ కోసం.",
		"hi": "अगली बार तेज़ प्रवेश के लिए अपना चेहरा दर्ज कराने हेतु कैमरे की ओर देखें।",
	},
	"face_registration_skip_ack": {
		"en": "Perfect! You now have full access to all tools. How can I assist you today?",
		"ta": "சிறப்பானது! அனைத்து கருவிகளுக்கும் இப்போது முழு அணுகல் உங்களுக்குள்ளது. இன்று எப்படி உதவலாம்?",
		"te": "పర్ఫెక్ట్! ఇప్పుడు మీకు అన్ని టూల్స్‌కి పూర్తి యాక్సెస్ ఉంది. ఈ రోజు నేను మీకు ఎలా సహాయం చేయగలను?",
		"hi": "बहुत बढ़िया! अब आपको सभी उपकरणों का पूरा उपयोग मिल गया है। आज मैं आपकी कैसे मदद कर सकती हूँ?",
	},
	"face_registration_success": {
		"en": "Face registered in system! You now have full access to all tools. How can I assist you today?",
		"ta": "முகம் வெற்றிகரமாக பதிவுசெய்யப்பட்டது! அனைத்து கருவிகளிலும் உங்களுக்கு முழு அணுகல் உள்ளது. எப்படி உதவலாம்?",
		"te": "ముఖం సిస్టమ్‌లో రిజిస్టర్ అయింది! ఇప్పుడు మీకు అన్ని టూల్స్‌కి పూర్తి యాక్సెస్ ఉంది. ఈ రోజు నేను మీకు ఎలా సహాయం చేయగలను?",
		"hi": "चेहरा सफलतापूर्वक दर्ज हो गया! अब आपको सभी उपकरणों का पूरा उपयोग मिल गया है। मैं कैसे मदद करूँ?",
	},
	"visitor_need_name": {
		"en": "Please tell me your name so I can log your visit.",
		"ta": "தயவுசெய்து உங்கள் வருகையை பதிவு செய்ய உங்கள் பெயரை கூறுங்கள்.",
		"te": "దయచేసి మీ పేరు చెప్పండి, మీ సందర్శనను నమోదు చేయగలను.",
		"hi": "कृपया आपका नाम बताइए ताकि मैं आपकी विज़िट दर्ज कर सकूँ।",
	},
	"visitor_need_phone": {
		"en": "Please share your phone number so I can complete the log.",
		"ta": "பதிவை முடிக்க உங்கள் தொலைபேசி எண்ணை பகிரவும்.",
		"te": "దయచేసి మీ ఫోన్ నంబర్ చెప్పండి, లాగ్ పూర్తి చేయడానికి.",
		"hi": "कृपया आपका फ़ोन नंबर साझा कीजिए ताकि मैं रिकॉर्ड पूरा कर सकूँ।",
	},
	"visitor_need_purpose": {
		"en": "Please let me know the purpose of your visit.",
		"ta": "உங்கள் வருகையின் காரணத்தை தெரியப்படுத்துங்கள்.",
		"te": "దయచేసి మీ సందర్శన ఉద్దేశాన్ని చెప్పండి.",
		"hi": "कृपया अपनी विज़िट का उद्देश्य बताइए।",
	},
	"visitor_need_host": {
		"en": "Please tell me whom you are visiting so I can notify them.",
		"ta": "நீங்கள் சந்திக்க விரும்பும் நபரின் பெயரை கூறுங்கள்.",
		"te": "దయచేసి మీరు ఎవరిని కలుసుకోవడానికి వచ్చారో చెప్పండి, అప్పుడు వారిని తెలియజేయగలను.",
		"hi": "कृपया बताइए आप किससे मिलने आए हैं ताकि मैं उन्हें सूचित कर सकूँ।",
	},
	"visitor_photo_prompt": {
		"en": "Thank you! I've logged your visit and notified {host}. Please look at the camera so we can capture your photo for our visitor log.",
		"ta": "நன்றி! உங்கள் வருகையை பதிவு செய்து {host} அவர்களுக்கு தெரிவித்து விட்டேன். பார்வையாளர் பதிவிற்காக தயவுசெய்து கேமராவை நோக்கிப் பாருங்கள்.",
		"te": "ధన్యవాదాలు! మీ సందర్శనను నమోదు చేసి {host}కు తెలియజేశాను. దయచేసి ముఖం చూపండి, మాకు సందర్శకుల లాగ్ కోసం మీ ఫోటోను తీసుకోవడానికి.",
		"hi": "धन्यवाद! मैंने आपकी विज़िट दर्ज करके {host} को सूचित कर दिया है। कृपया कैमरे की ओर देखें ताकि हम आगंतुक रजिस्टर के लिए आपकी फोटो ले सकें।",
	},
	"host_notification_prompt": {
		"en": "I have informed your host. Please wait at the reception.",
		"ta": "உங்கள் வரவேற்பாளருக்கு நான் தகவல் தெரிவித்துள்ளேன். தயவுசெய்து வரவேற்பில் காத்திருக்கவும்.",
		"te": "నేను మీ హోస్ట్‌కి తెలియజేసాను. దయచేసి రిసెప్షన్ వద్ద వేచి ఉండండి.",
		"hi": "मैंने आपके मेजबान को सूचित कर दिया है। कृपया रिसेप्शन पर प्रतीक्षा करें।",
	},
	"flow_end_prompt": {
		"en": "Thank you! Session completed. Say 'Hey Clara' if you need more assistance.",
		"ta": "நன்றி. இன்னும் ஏதேனும் தேவையெனில் 'Hey Clara' என்று சொல்லுங்கள்.",
		"te": "ధన్యవాదాలు. మీకు ఇంకేమైనా కావాలంటే, కేవలం 'హే క్లారా' అని చెప్పండి.",
		"hi": "धन्यवाद। यदि आपको और कुछ चाहिए तो 'Hey Clara' कह दीजिए।",
	},
	"wake_ack": {
		"en": "I'm awake! How can I help?",
		"ta": "நான் விழித்துள்ளேன்! எப்படி உதவலாம்?",
		"te": "నేను మేలుకున్నాను! ఎలా సహాయం చేయగలను?",
		"hi": "मैं जाग गई हूँ! मैं कैसे मदद कर सकती हूँ?",
	},
	"sleep_ack": {
		"en": "Going idle, say 'Hey Clara' to wake me again.",
		"ta": "நான் ஓய்வெடுக்கிறேன், மீண்டும் எழுப்ப 'Hey Clara' என்று சொல்லுங்கள்.",
		"te": "నేను విశ్రాంతి తీసుకుంటాను, మళ్లీ నన్ను ప్రారంభించడానికి 'హే క్లారా' అని చెప్పండి.",
		"hi": "मैं विराम ले रही हूँ, मुझे जगाने के लिए 'Hey Clara' कहें।",
	},
	"already_awake": {
		"en": "Clara is already active.",
		"ta": "க்ளாரா ஏற்கனவே செயல்பாட்டில் உள்ளார்.",
		"te": "క్లారా ఇప్పటికే యాక్టివ్‌గా ఉంది.",
		"hi": "क्लारा पहले से सक्रिय है।",
	},
	"auto_sleep_notice": {
		"en": "Clara has gone idle due to inactivity. Say 'Hey Clara' to wake me up.",
		"ta": "செயல்பாட்டின்மை காரணமாக க்ளாரா ஓய்வில் உள்ளார். என்னை எழுப்ப 'Hey Clara' என்று சொல்லுங்கள்.",
		"te": "క్లారా కొన్ని సేపు యాక్టివ్‌గా లేకపోవడం వలన రెస్టుకి వెళ్ళింది. నన్ను మళ్లీ ప్రారంభించడానికి 'హే క్లారా' అని చెప్పండి.",
		"hi": "गतिविधि न होने के कारण क्लारा विराम पर है। मुझे जगाने के लिए 'Hey Clara' कहें।",
	},
	"visitor_limited_access": {
		"en": "Visitors have limited access. Your host will assist you with any information needed.",
	},
	"verify_first": {
		"en": "Please verify your identity first. Say 'Hey Clara' to start the verification process.",
	},
	"employee_only_tool": {
		"en": "This tool requires employee access.",
	},
	"tool_access_granted": {
		"en": "Access granted for {tool}. How can I help you?",
	},
	"visitor_photo_captured": {
		"en": "Visitor photo captured! Please wait at the reception.",
	},
}

// normalizations maps common ASR transcription artifacts to canonical forms
// per language, applied before phrase matching.
var normalizations = map[string]map[string]string{
	"ta": {
		"employee": "ஊழியர்",
		"visitor":  "வருகையாளர்",
	},
	"te": {
		"employee":        "ఉద్యోగి",
		"visitor":         "అతిథి",
		"speak telugu":    "తెలుగులో మాట్లాడండి",
		"talk in telugu":  "తెలుగులో మాట్లాడండి",
	},
	"hi": {
		"talk in hindi": "हिंदी",
		"speak hindi":   "हिंदी",
	},
	"en": {},
}

// wakePhrases and sleepPhrases drive the sleep gate. English fallbacks are
// included for every language because ASR frequently emits the English
// rendering of the wake word even mid-conversation in another language.
var wakePhrases = map[string][]string{
	"en": {"hey clara"},
	"ta": {"ஹே க்ளாரா", "ஹாய் க்ளாரா", "hey clara"},
	"te": {"హే క్లారా", "హాయ్ క్లారా", "hey clara"},
	"hi": {"हे क्लारा", "hey clara"},
}

var sleepPhrases = map[string][]string{
	"en": {"go idle", "sleep now", "take a break"},
	"ta": {"ஓய்வு எடு", "தூங்கிக்கொள்", "go idle"},
	"te": {"విశ్రాంతి తీసుకో", "నిద్రపో", "go idle"},
	"hi": {"सो जाओ", "आराम करो", "विराम लो", "go idle"},
}
