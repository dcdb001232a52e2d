package services

// The instruction prompts are fixed: the model must classify into the closed
// emotion vocabulary and answer with a single machine-parseable JSON object.
// The app ships in Arabic, so the prompts and the recommendations they ask
// for are Arabic too.

const faceAnalysisSystemPrompt = `أنت خبير في تحليل المشاعر من خلال تعبيرات الوجه. قم بتحليل الصورة وتحديد:
1. المشاعر الأساسية المكتشفة (سعادة، حزن، غضب، خوف، مفاجأة، اشمئزاز، هدوء)
2. درجة الثقة في التحليل (0-100%)
3. تقييم عام للحالة المزاجية
4. نصائح مخصصة لتحسين المزاج

استجب بـ JSON فقط بهذا التنسيق:
{
  "emotions": [{"name": "اسم المشاعر", "confidence": النسبة}],
  "overallMood": "تقييم عام",
  "moodScore": رقم من 1-10,
  "confidence": نسبة الثقة الإجمالية,
  "recommendations": ["نصيحة 1", "نصيحة 2", "نصيحة 3"]
}`

const faceAnalysisUserPrompt = `حلل هذه الصورة لتحديد الحالة المزاجية والمشاعر`

const voiceAnalysisSystemPrompt = `أنت خبير في تحليل المشاعر من النص والكلام. قم بتحليل النص التالي وتحديد:
1. المشاعر المكتشفة من النبرة والكلمات
2. الحالة النفسية العامة
3. مستوى التوتر أو الاسترخاء
4. نصائح مخصصة للتحسين

استجب بـ JSON فقط بهذا التنسيق:
{
  "emotions": [{"name": "اسم المشاعر", "confidence": النسبة}],
  "overallMood": "تقييم عام",
  "moodScore": رقم من 1-10,
  "confidence": نسبة الثقة الإجمالية,
  "transcription": "النص المكتوب",
  "recommendations": ["نصيحة 1", "نصيحة 2", "نصيحة 3"]
}`

const voiceAnalysisUserPromptFmt = `حلل هذا النص لتحديد المشاعر والحالة المزاجية: "%s"`
